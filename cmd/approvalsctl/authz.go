package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/permissions"
	"github.com/jacksonlee411/approvals/pkg/authz"
	"github.com/jacksonlee411/approvals/pkg/configuration"
)

type checkOptions struct {
	role    string
	kind    string
	action  string
	account string
	explain bool
}

type checkOutput struct {
	Subject string   `json:"subject"`
	Domain  string   `json:"domain"`
	Object  string   `json:"object"`
	Action  string   `json:"action"`
	Route   bool     `json:"route_allowed"`
	Ability bool     `json:"ability_allowed"`
	Mode    string   `json:"mode"`
	Trace   []string `json:"trace,omitempty"`
}

func newAuthzCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authz",
		Short: "Evaluate the route policy and role abilities",
	}

	opts := &checkOptions{}
	check := &cobra.Command{
		Use:   "check",
		Short: "Check whether a role may perform an action on a kind",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newAuthzService()
			if err != nil {
				return withCode(exitUsage, err)
			}
			out, err := runCheck(cmd, svc, opts)
			if err != nil {
				return err
			}
			if err := writeJSONLine(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !out.Route || !out.Ability {
				return withCode(exitDenied, fmt.Errorf("%s may not %s %s", opts.role, opts.action, opts.kind))
			}
			return nil
		},
	}
	check.Flags().StringVar(&opts.role, "role", "", "viewer, editor or admin")
	check.Flags().StringVar(&opts.kind, "kind", string(permissions.KindRequest), "request or comment")
	check.Flags().StringVar(&opts.action, "action", string(permissions.ActionRead), "action to evaluate")
	check.Flags().StringVar(&opts.account, "account", "", "account id used as the casbin domain (random when empty)")
	check.Flags().BoolVar(&opts.explain, "explain", false, "include the matched policy lines")
	_ = check.MarkFlagRequired("role")
	cmd.AddCommand(check)
	return cmd
}

func newAuthzService() (*authz.Service, error) {
	conf, err := configuration.Load(".env", ".env.local")
	if err != nil {
		return nil, err
	}
	cfg := authz.FromConfiguration(conf)
	// Report what the policy says regardless of the rollout mode.
	cfg.FlagProvider = authz.StaticFlagProvider(authz.ModeEnforce)
	return authz.NewService(cfg)
}

func runCheck(cmd *cobra.Command, svc *authz.Service, opts *checkOptions) (checkOutput, error) {
	role := user.Role(opts.role)
	if !role.Valid() {
		return checkOutput{}, withCode(exitUsage, fmt.Errorf("unknown role %q", opts.role))
	}
	kind := permissions.Kind(opts.kind)
	if kind != permissions.KindRequest && kind != permissions.KindComment {
		return checkOutput{}, withCode(exitUsage, fmt.Errorf("unknown kind %q", opts.kind))
	}
	action := permissions.Action(opts.action)
	accountID := uuid.New()
	if opts.account != "" {
		parsed, err := uuid.Parse(opts.account)
		if err != nil {
			return checkOutput{}, withCode(exitUsage, fmt.Errorf("invalid account id %q", opts.account))
		}
		accountID = parsed
	}

	req := authz.NewRequest(
		authz.SubjectForRole(string(role)),
		authz.DomainFromAccount(accountID),
		kind.Object(),
		authz.NormalizeAction(string(action)),
	)
	u := user.New(accountID, "authz check", "check@example.com", role)
	ability := permissions.NewAbility(&u)

	out := checkOutput{
		Subject: req.Subject,
		Domain:  req.Domain,
		Object:  req.Object,
		Action:  req.Action,
		Ability: ability.CanKind(action, kind),
		Mode:    string(svc.Mode()),
	}
	if opts.explain {
		res, err := svc.Inspect(cmd.Context(), req)
		if err != nil {
			return checkOutput{}, withCode(exitUsage, err)
		}
		out.Route = res.Allowed
		out.Trace = res.Trace
		return out, nil
	}
	allowed, err := svc.Check(cmd.Context(), req)
	if err != nil {
		return checkOutput{}, withCode(exitUsage, err)
	}
	out.Route = allowed
	return out, nil
}
