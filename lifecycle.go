package offlinecache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/panics"
)

// ErrNotControlled is returned by Dispatch when no fetch handler can
// answer the request and no passthrough network is configured.
var ErrNotControlled = errors.New("no active fetch handler")

// State is the position of a cache version in its lifecycle.
type State int

const (
	// StateNew is the state before Run is called.
	StateNew State = iota

	// StateInstalling means the install handler is running.
	StateInstalling

	// StateInstalled means install succeeded and activation is pending.
	StateInstalled

	// StateActivating means the activate handler is running.
	StateActivating

	// StateActive means the version is ready and controls fetches.
	StateActive

	// StateRedundant means install or activate failed and the version
	// will never take control.
	StateRedundant
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	case StateRedundant:
		return "redundant"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// InstallFunc handles the install lifecycle event.
type InstallFunc func(context.Context) error

// ActivateFunc handles the activate lifecycle event.
type ActivateFunc func(context.Context) error

// FetchFunc handles an intercepted fetch event.
type FetchFunc func(context.Context, *Request) (*Response, error)

// Lifecycle sequences a cache version from registration to control.
// Handlers are registered by explicit calls, and Run drives
// install, activate, ready in order, each phase completing before the
// next begins. There is no waiting on superseded versions: a version
// that installs successfully is promoted immediately.
type Lifecycle struct {
	version string
	clients ClientController
	network Network

	mu         sync.RWMutex
	state      State
	onInstall  InstallFunc
	onActivate ActivateFunc
	onFetch    FetchFunc
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption interface {
	apply(*Lifecycle)
}

type lifecycleOptionFunc func(*Lifecycle)

func (f lifecycleOptionFunc) apply(l *Lifecycle) {
	f(l)
}

// WithClients sets the controller claimed once the version is active.
func WithClients(clients ClientController) LifecycleOption {
	return lifecycleOptionFunc(func(l *Lifecycle) {
		l.clients = clients
	})
}

// WithPassthrough sets the network used by Dispatch for requests the
// version does not control yet (before activation completes).
func WithPassthrough(network Network) LifecycleOption {
	return lifecycleOptionFunc(func(l *Lifecycle) {
		l.network = network
	})
}

// NewLifecycle creates a lifecycle for the given version tag.
func NewLifecycle(version string, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{version: version, state: StateNew}
	for _, o := range opts {
		o.apply(l)
	}
	return l
}

// Register creates a lifecycle wired to the worker's three operations.
func Register(w *Worker, opts ...LifecycleOption) *Lifecycle {
	l := NewLifecycle(w.Config().CacheName, opts...)
	l.OnInstall(w.Install)
	l.OnActivate(w.Activate)
	l.OnFetch(w.Fetch)
	return l
}

// OnInstall registers the install handler.
func (l *Lifecycle) OnInstall(f InstallFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onInstall = f
}

// OnActivate registers the activate handler.
func (l *Lifecycle) OnActivate(f ActivateFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onActivate = f
}

// OnFetch registers the fetch handler.
func (l *Lifecycle) OnFetch(f FetchFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onFetch = f
}

// Version returns the version tag the lifecycle was created for.
func (l *Lifecycle) Version() string {
	return l.version
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Lifecycle) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// Run drives the version through install and activate and marks it
// active. A handler failure (including a panic, which is recovered and
// returned as an error) leaves the version redundant: a failed install
// never activates, so the previously active version keeps serving.
// Once active, open clients are claimed through the controller set with
// WithClients, if any.
func (l *Lifecycle) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.state != StateNew {
		state := l.state
		l.mu.Unlock()
		return fmt.Errorf("lifecycle for %q already started (state %s)", l.version, state)
	}
	l.state = StateInstalling
	install, activate := l.onInstall, l.onActivate
	l.mu.Unlock()

	if install != nil {
		if err := invoke(ctx, install); err != nil {
			l.setState(StateRedundant)
			return fmt.Errorf("install %q: %w", l.version, err)
		}
	}
	l.setState(StateInstalled)

	l.setState(StateActivating)
	if activate != nil {
		if err := invoke(ctx, activate); err != nil {
			l.setState(StateRedundant)
			return fmt.Errorf("activate %q: %w", l.version, err)
		}
	}
	l.setState(StateActive)

	if l.clients != nil {
		if err := l.clients.Claim(ctx, l.version); err != nil {
			return fmt.Errorf("claim clients for %q: %w", l.version, err)
		}
	}
	return nil
}

// Dispatch delivers an intercepted request to the fetch handler.
// Until the version is active, the request goes straight to the
// passthrough network: an uncontrolled client talks to the origin as if
// no version were registered. Handler panics are recovered and returned
// as errors so a single request cannot take down the event loop.
func (l *Lifecycle) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	l.mu.RLock()
	state, fetch := l.state, l.onFetch
	l.mu.RUnlock()

	if state != StateActive || fetch == nil {
		if l.network != nil {
			return l.network.Fetch(ctx, req)
		}
		return nil, ErrNotControlled
	}

	var (
		res     *Response
		err     error
		catcher panics.Catcher
	)
	catcher.Try(func() {
		res, err = fetch(ctx, req)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return nil, recovered.AsError()
	}
	return res, err
}

// invoke runs a lifecycle handler, converting a panic into an error.
func invoke(ctx context.Context, f func(context.Context) error) error {
	var (
		err     error
		catcher panics.Catcher
	)
	catcher.Try(func() {
		err = f(ctx)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return recovered.AsError()
	}
	return err
}
