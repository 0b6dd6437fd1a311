package approvals

import (
	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence"
	"github.com/jacksonlee411/approvals/modules/approvals/presentation/authn"
	"github.com/jacksonlee411/approvals/modules/approvals/presentation/controllers"
	"github.com/jacksonlee411/approvals/modules/approvals/presentation/loaders"
	"github.com/jacksonlee411/approvals/modules/approvals/seed"
	"github.com/jacksonlee411/approvals/modules/approvals/services"
	"github.com/jacksonlee411/approvals/pkg/application"
)

type ModuleOptions struct {
	Repositories      persistence.Repositories
	AccountHeader     string
	UserHeader        string
	StrictTransitions bool
	// PageSize and MaxPageSize bound GET /requests; zero picks the controller defaults.
	PageSize    int
	MaxPageSize int
	// Seed is registered with the application seeder when set.
	Seed *seed.File
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts.AccountHeader == "" {
		opts.AccountHeader = "X-Account-Id"
	}
	if opts.UserHeader == "" {
		opts.UserHeader = "X-User-Id"
	}
	return &Module{options: opts}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	repos := m.options.Repositories
	transitionOpts := []services.TransitionOption{services.WithStrictTransitions(m.options.StrictTransitions)}

	requestLister := services.NewRequestLister(repos.Tx, repos.Requests)
	commentLister := services.NewCommentLister(repos.Tx, repos.Comments)

	app.RegisterServices(
		&repos,
		services.NewEntityFinder(repos.Tx, repos.Requests, repos.Categories, repos.Comments),
		services.NewRequestCreator(repos.Tx, repos.Requests),
		services.NewRequestSubmitter(repos.Tx, repos.Requests, transitionOpts...),
		services.NewRequestApprover(repos.Tx, repos.Requests, transitionOpts...),
		services.NewRequestRejector(repos.Tx, repos.Requests, transitionOpts...),
		requestLister,
		services.NewRequestExporter(requestLister, repos.Tx, repos.Categories),
		services.NewCommentCreator(repos.Tx, repos.Comments),
		services.NewCommentDestructor(repos.Tx, repos.Comments),
		commentLister,
		&loaders.Dependencies{
			Tx:         repos.Tx,
			Users:      repos.Users,
			Categories: repos.Categories,
			Comments:   commentLister,
		},
	)

	auth := authn.Options{
		AccountHeader: m.options.AccountHeader,
		UserHeader:    m.options.UserHeader,
		Tx:            repos.Tx,
		Accounts:      repos.Accounts,
		Users:         repos.Users,
	}
	app.RegisterControllers(
		controllers.NewRequestsController(app, auth, controllers.Paging{
			PageSize:    m.options.PageSize,
			MaxPageSize: m.options.MaxPageSize,
		}),
		controllers.NewCommentsController(app, auth),
	)

	if m.options.Seed != nil {
		app.Seeder().Register(seed.FixturesSeedFunc(m.options.Seed, repos))
	}
	return nil
}

func (m *Module) Name() string {
	return "approvals"
}
