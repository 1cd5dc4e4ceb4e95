package main

import (
	"context"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/dynamic-member-search-go/internal/api"
	"github.com/AntonStoeckl/dynamic-member-search-go/internal/observability"
	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

// SearchOptions holds the flags of the search command.
type SearchOptions struct {
	UserName string
	TeamName string
	AgeGoe   int
	AgeLoe   int
	Offset   int
	Limit    int
	Sort     []string
	Paged    bool
	Eventual bool
}

// NewSearchCommand creates the search command, which runs one search and prints the result as JSON.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search members and print the result as JSON",
		Long: `Search members by any combination of userName, teamName and an age range.

Omitted flags are absent criteria. Without --paged every match is printed,
with --paged one window of --limit members starting at --offset is printed
together with the total number of matches.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cond, err := opts.condition(cmd)
			if err != nil {
				return err
			}

			return runSearch(cmd.Context(), rootOpts, opts, cond, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.UserName, "userName", "", "exact username")
	flags.StringVar(&opts.TeamName, "teamName", "", "exact team name")
	flags.IntVar(&opts.AgeGoe, "ageGoe", 0, "minimum age, inclusive")
	flags.IntVar(&opts.AgeLoe, "ageLoe", 0, "maximum age, inclusive")
	flags.IntVar(&opts.Offset, "offset", 0, "number of matches to skip (with --paged)")
	flags.IntVar(&opts.Limit, "limit", membersearch.DefaultPageLimit, "page size (with --paged)")
	flags.StringArrayVar(&opts.Sort, "sort", nil, "order as field[,asc|desc], repeatable")
	flags.BoolVar(&opts.Paged, "paged", false, "print one page instead of all matches")
	flags.BoolVar(&opts.Eventual, "eventual", false, "allow reading from the replica")

	return cmd
}

// condition turns the flags that were actually set into criteria, so --ageGoe 0 is a real bound.
func (o *SearchOptions) condition(cmd *cobra.Command) (membersearch.SearchCondition, error) {
	flags := cmd.Flags()
	options := make([]membersearch.ConditionOption, 0, 4)

	if flags.Changed("userName") {
		options = append(options, membersearch.WithUserName(o.UserName))
	}

	if flags.Changed("teamName") {
		options = append(options, membersearch.WithTeamName(o.TeamName))
	}

	if flags.Changed("ageGoe") {
		options = append(options, membersearch.WithAgeGoe(o.AgeGoe))
	}

	if flags.Changed("ageLoe") {
		options = append(options, membersearch.WithAgeLoe(o.AgeLoe))
	}

	cond := membersearch.NewSearchCondition(options...)
	if err := cond.Validate(); err != nil {
		return membersearch.SearchCondition{}, err
	}

	return cond, nil
}

func (o *SearchOptions) orders() ([]membersearch.Order, error) {
	orders := make([]membersearch.Order, 0, len(o.Sort))

	for _, s := range o.Sort {
		order, err := membersearch.ParseOrder(s)
		if err != nil {
			return nil, err
		}

		orders = append(orders, order)
	}

	if err := membersearch.ValidateOrders(membersearch.MemberProjectionShape, orders...); err != nil {
		return nil, err
	}

	return orders, nil
}

func runSearch(
	ctx context.Context,
	rootOpts *RootOptions,
	opts *SearchOptions,
	cond membersearch.SearchCondition,
	out io.Writer,
) error {
	orders, err := opts.orders()
	if err != nil {
		return err
	}

	s, err := openStore(ctx, rootOpts.Config, rootOpts.Logger, &observability.Providers{})
	if err != nil {
		return err
	}
	defer s.Close()

	if opts.Eventual {
		ctx = membersearch.WithEventualConsistency(ctx)
	}

	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if !opts.Paged {
		members, err := s.searcher.Search(ctx, cond, orders...)
		if err != nil {
			return err
		}

		return encoder.Encode(members)
	}

	pageRequest := membersearch.PageRequest{Offset: opts.Offset, Limit: opts.Limit, Orders: orders}
	if err := pageRequest.Validate(); err != nil {
		return err
	}

	page, err := s.searcher.SearchPage(ctx, cond, pageRequest)
	if err != nil {
		return err
	}

	return encoder.Encode(api.NewPageResponse(page))
}
