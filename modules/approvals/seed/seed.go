package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/BurntSushi/toml"
	ferrors "github.com/go-faster/errors"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/category"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence"
	"github.com/jacksonlee411/approvals/pkg/application"
	"github.com/jacksonlee411/approvals/pkg/composables"
)

type AccountSeed struct {
	Name  string `toml:"name"`
	TaxID string `toml:"tax_id"`
}

type UserSeed struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
	Role  string `toml:"role"`
}

type CategorySeed struct {
	Name string `toml:"name"`
}

// File is the fixture set of one account.
type File struct {
	Account    AccountSeed    `toml:"account"`
	Users      []UserSeed     `toml:"users"`
	Categories []CategorySeed `toml:"categories"`
}

// Default is the fixture set used when no seed file is configured.
func Default() *File {
	return &File{
		Account: AccountSeed{Name: "Account Seed", TaxID: "94.984.296/0001-76"},
		Users: []UserSeed{
			{Name: "Viewer User", Email: "viewer@example.com", Role: string(user.RoleViewer)},
			{Name: "Editor User", Email: "editor@example.com", Role: string(user.RoleEditor)},
			{Name: "Admin User", Email: "admin@example.com", Role: string(user.RoleAdmin)},
		},
		Categories: []CategorySeed{{Name: "Hardware"}, {Name: "Software"}, {Name: "Financeiro"}, {Name: "RH"}},
	}
}

func LoadFile(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, ferrors.Wrapf(err, "decode seed file %s", path)
	}
	if err := f.validate(); err != nil {
		return nil, ferrors.Wrapf(err, "seed file %s", path)
	}
	return &f, nil
}

func (f *File) validate() error {
	if strings.TrimSpace(f.Account.TaxID) == "" {
		return errors.New("account.tax_id is required")
	}
	for _, u := range f.Users {
		if _, err := user.ParseRole(u.Role); err != nil {
			return ferrors.Wrapf(err, "user %s", u.Email)
		}
	}
	return nil
}

// Report counts what a seed run created. Rows that already existed are not counted.
type Report struct {
	Account    account.Account
	Users      int
	Categories int
}

type fixtureSeeder struct {
	file  *File
	repos persistence.Repositories
}

// FixturesSeedFunc creates the account of f with its users and categories. Running it
// again leaves existing rows untouched.
func FixturesSeedFunc(f *File, repos persistence.Repositories) application.SeedFunc {
	s := &fixtureSeeder{file: f, repos: repos}
	return func(ctx context.Context, app application.Application) error {
		report, err := s.Run(ctx)
		if err != nil {
			return err
		}
		app.Logger().Infof("Seeded account %s: %d users, %d categories created", report.Account.Name(), report.Users, report.Categories)
		return nil
	}
}

func Run(ctx context.Context, f *File, repos persistence.Repositories) (Report, error) {
	return (&fixtureSeeder{file: f, repos: repos}).Run(ctx)
}

func (s *fixtureSeeder) Run(ctx context.Context) (Report, error) {
	var report Report
	err := s.repos.Tx.InTx(ctx, func(txCtx context.Context) error {
		acc, err := s.getOrCreateAccount(txCtx)
		if err != nil {
			return err
		}
		report.Account = acc
		txCtx = composables.WithAccountID(txCtx, acc.ID())

		for _, us := range s.file.Users {
			created, err := s.getOrCreateUser(txCtx, acc, us)
			if err != nil {
				return err
			}
			if created {
				report.Users++
			}
		}
		for _, cs := range s.file.Categories {
			created, err := s.getOrCreateCategory(txCtx, acc, cs)
			if err != nil {
				return err
			}
			if created {
				report.Categories++
			}
		}
		return nil
	})
	return report, err
}

func (s *fixtureSeeder) getOrCreateAccount(ctx context.Context) (account.Account, error) {
	entity := account.New(s.file.Account.Name, s.file.Account.TaxID)
	existing, err := s.repos.Accounts.GetByTaxID(ctx, entity.TaxID())
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, account.ErrNotFound) {
		return account.Account{}, ferrors.Wrap(err, "lookup account")
	}
	if err := entity.Validate(); err != nil {
		return account.Account{}, ferrors.Wrap(err, "seed account")
	}
	created, err := s.repos.Accounts.Create(ctx, entity)
	if err != nil {
		return account.Account{}, ferrors.Wrap(err, "create account")
	}
	return created, nil
}

func (s *fixtureSeeder) getOrCreateUser(ctx context.Context, acc account.Account, us UserSeed) (bool, error) {
	if _, err := s.repos.Users.GetByEmail(ctx, acc.ID(), us.Email); err == nil {
		return false, nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return false, ferrors.Wrapf(err, "lookup user %s", us.Email)
	}
	role, err := user.ParseRole(us.Role)
	if err != nil {
		return false, err
	}
	entity := user.New(acc.ID(), us.Name, us.Email, role)
	if err := entity.Validate(); err != nil {
		return false, ferrors.Wrapf(err, "seed user %s", us.Email)
	}
	if _, err := s.repos.Users.Create(ctx, entity); err != nil {
		return false, ferrors.Wrapf(err, "create user %s", us.Email)
	}
	return true, nil
}

func (s *fixtureSeeder) getOrCreateCategory(ctx context.Context, acc account.Account, cs CategorySeed) (bool, error) {
	if _, err := s.repos.Categories.GetByName(ctx, acc.ID(), cs.Name); err == nil {
		return false, nil
	} else if !errors.Is(err, category.ErrNotFound) {
		return false, ferrors.Wrapf(err, "lookup category %s", cs.Name)
	}
	entity := category.New(acc.ID(), cs.Name)
	if err := entity.Validate(); err != nil {
		return false, ferrors.Wrapf(err, "seed category %s", cs.Name)
	}
	if _, err := s.repos.Categories.Create(ctx, entity); err != nil {
		return false, ferrors.Wrapf(err, "create category %s", cs.Name)
	}
	return true, nil
}
