package platform

import (
	"github.com/aretw0/cleverpad/pkg/adapters/memory"
	"github.com/aretw0/cleverpad/pkg/adapters/remote"
	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/typed"
)

// New wires a workspace: local state under stateDir, the REST client, the
// session and preference stores, and the notes service following them.
//
//	ws, err := platform.New("", platform.WithBaseURL("http://localhost:8000"))
func New(stateDir string, opts ...Option) (*Workspace, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	kv, store, err := initStore(stateDir, o)
	if err != nil {
		return nil, err
	}

	clientOpts := []remote.Option{remote.WithLogger(o.logger.Named("remote"))}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, remote.WithHTTPClient(o.httpClient))
	}
	if o.profileTTL > 0 {
		clientOpts = append(clientOpts, remote.WithProfileTTL(o.profileTTL))
	}
	client := remote.NewClient(o.baseURL, clientOpts...)

	sessions := typed.NewSessionStore(kv, typed.WithLogger[core.Session](o.logger))
	prefs := typed.NewPreferencesStore(kv, typed.WithLogger[core.Theme](o.logger))

	draftOpts := []core.DraftOption{core.WithDebounce(o.debounce), core.WithSaveTimeout(o.saveTimeout)}
	if o.flushOnLeave != nil {
		draftOpts = append(draftOpts, core.WithFlushOnLeave(*o.flushOnLeave))
	}
	svcOpts := []core.ServiceOption{
		core.WithLogger(o.logger.Named("workspace")),
		core.WithServiceClock(o.clock),
		core.WithDraftOptions(draftOpts...),
	}
	if o.saveTimeout > 0 {
		svcOpts = append(svcOpts, core.WithReconcileTimeout(o.saveTimeout))
	}

	return &Workspace{
		Service:     core.NewService(sessions, o.repositoryFactory(client), svcOpts...),
		Client:      client,
		Sessions:    sessions,
		Preferences: prefs,
		Store:       store,
		logger:      o.logger,
	}, nil
}

// repositoryFactory picks the note repository for a session: the remote API
// for accounts, a fresh in-memory store for guests.
func (o *options) repositoryFactory(client *remote.Client) core.RepositoryFactory {
	return func(s core.Session) (core.Repository, error) {
		if o.repository != nil {
			return o.repository, nil
		}
		switch s.Mode() {
		case core.ModeRemote:
			return remote.NewRepository(client, s.Token), nil
		case core.ModeGuest:
			return memory.NewRepository(memory.WithClock(o.clock)), nil
		default:
			return nil, core.ErrNoSession
		}
	}
}
