package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/algoritmia-up/portal/internal/adapters/remote"
	service "github.com/algoritmia-up/portal/internal/app"
	"github.com/algoritmia-up/portal/internal/domain/listing"
	"github.com/algoritmia-up/portal/internal/domain/model"
)

// ErrUnknownKind is returned by list for anything but contests, resources or events.
var ErrUnknownKind = errors.New("unknown listing kind")

type listFlags struct {
	query string
	sort  string
	dir   string
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "case-insensitive search")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort key")
	cmd.Flags().StringVar(&f.dir, "dir", "", "sort direction: asc or desc")
}

func newListCmd(e *env) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:       "list <contests|resources|events>",
		Short:     "Load a collection from the API and print it",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{service.KindContest, service.KindResource, service.KindEvent},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire(e.cfg, e.log)
			if err != nil {
				return err
			}
			if err := c.svc.Reload(cmd.Context(), c.creds); err != nil {
				return err
			}
			return printListing(e.out, c.svc, args[0], f)
		},
	}
	f.bind(cmd)
	return cmd
}

// listingSource is the read side of the service.
type listingSource interface {
	Contests(query string, sort listing.SortState) []service.ContestRow
	Resources(query string, sort listing.SortState) []model.Resource
	Events(query string, sort listing.SortState) []model.Event
}

func printListing(out io.Writer, src listingSource, kind string, f listFlags) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	switch kind {
	case service.KindContest:
		sort, err := listing.Contests.Parse(f.sort, f.dir)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tTITLE\tPLATFORM\tSTART\tSTATUS\tSEASON")
		for _, c := range src.Contests(f.query, sort) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Title, c.Platform, stamp(c.StartsAt), c.Status, c.Season)
		}
	case service.KindResource:
		sort, err := listing.Resources.Parse(f.sort, f.dir)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tDIFFICULTY\tADDED BY")
		for _, r := range src.Resources(f.query, sort) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Type, r.Title, r.Difficulty, r.AddedBy)
		}
	case service.KindEvent:
		sort, err := listing.Events.Parse(f.sort, f.dir)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tTITLE\tSTART\tLOCATION")
		for _, ev := range src.Events(f.query, sort) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ev.ID, ev.Title, stamp(ev.StartsAt), ev.Location)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return nil
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func newLeaderboardCmd(e *env) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Sync ratings from Codeforces and print the ranking",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sort, err := listing.Leaderboard.Parse(f.sort, f.dir)
			if err != nil {
				return err
			}
			c, err := wire(e.cfg, e.log)
			if err != nil {
				return err
			}
			if _, err := c.svc.SyncLeaderboard(cmd.Context(), c.creds); err != nil {
				return err
			}
			me := c.gate.Resolve(cmd.Context(), c.creds)
			printLeaderboard(e.out, c.svc.Leaderboard(f.query, sort, me.UserID))
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func printLeaderboard(out io.Writer, lb service.Leaderboard) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "RANK\tHANDLE\tNAME\tCOUNTRY\tRATING\tMAX\tTIER")
	for _, row := range lb.Rows {
		handle := row.Member.Handle
		if row.IsCurrentUser {
			handle += " *"
		}
		peak := "-"
		if row.Member.MaxRating != nil {
			peak = fmt.Sprint(*row.Member.MaxRating)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			row.Rank, handle, row.Member.Name, row.Member.CountryCode, row.Member.Rating, peak, row.Tier.Title)
	}
	if lb.LastSynced != nil {
		fmt.Fprintf(tw, "\nlast synced %s\n", lb.LastSynced.UTC().Format(time.RFC3339))
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Resolve the configured session cookie",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := wire(e.cfg, e.log)
			if err != nil {
				return err
			}
			st := c.gate.Resolve(cmd.Context(), c.creds)
			fmt.Fprintf(e.out, "status: %s\nrole: %s\nuser: %s\ncan mutate: %t\n",
				st.Status, st.Role, st.UserID, st.CanMutate())
			return nil
		},
	}
}

func newLoginCmd(e *env) *cobra.Command {
	var (
		email    string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print the session cookie for session_cookie",
		Long: `Sign in against the API and print the Cookie header to use as
session_cookie (or PORTAL_SESSION_COOKIE). The password is read from
PORTAL_PASSWORD, or from the first line of stdin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			c, err := wire(e.cfg, e.log)
			if err != nil {
				return err
			}
			sess, err := c.remote.Login(cmd.Context(), email, password, remember)
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(e.out, "user: %s\nsession_cookie: %s\n", sess.UserID, sess.Credentials.Header())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVar(&remember, "remember", false, "keep the session for 30 days instead of 1")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the configured session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := wire(e.cfg, e.log)
			if err != nil {
				return err
			}
			if c.creds.Empty() {
				return errors.New("no session_cookie configured")
			}
			if err := c.remote.Logout(cmd.Context(), c.creds); err != nil {
				return userError(err)
			}
			fmt.Fprintln(e.out, "signed out")
			return nil
		},
	}
}

func readPassword(in io.Reader) (string, error) {
	if p := os.Getenv("PORTAL_PASSWORD"); p != "" {
		return p, nil
	}
	line, err := readLine(in)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// userError keeps the remote error chain but leads with the message a
// person can act on.
func userError(err error) error {
	if e, ok := remote.AsError(err); ok {
		return fmt.Errorf("%s: %w", e.UserMessage(), err)
	}
	return err
}
