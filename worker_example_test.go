package offlinecache_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	offlinecache "github.com/webshim/offline-cache"
	"github.com/webshim/offline-cache/store/memstore"
)

func ExampleRegister() {
	// Simulate an origin that is reachable during install only.
	online := true
	origin := offlinecache.NetworkFunc(func(_ context.Context, req *offlinecache.Request) (*offlinecache.Response, error) {
		if !online {
			return nil, errors.New("offline")
		}
		return &offlinecache.Response{
			StatusCode: http.StatusOK,
			Body:       []byte("content of " + req.URL),
		}, nil
	})

	worker, err := offlinecache.NewWorker(offlinecache.Config{
		CacheName: "offline-cache-v2",
		Assets:    []string{"/", "/static/manifest.json"},
	}, memstore.NewRegistry(), origin)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	// Drive the version through install and activate.
	lifecycle := offlinecache.Register(worker)
	ctx := context.Background()
	if err := lifecycle.Run(ctx); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("State:", lifecycle.State())

	// The origin goes away; a navigation still gets the cached root.
	online = false
	res, err := lifecycle.Dispatch(ctx, &offlinecache.Request{
		Method:   http.MethodGet,
		URL:      "/dashboard",
		Navigate: true,
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Body:", string(res.Body))

	// Output:
	// State: active
	// Body: content of /
}
