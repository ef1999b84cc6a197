package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	ledgerapi "github.com/ageorgief/BookLibrary/contracts/ledger"
	"github.com/ageorgief/BookLibrary/internal/clients"
	"github.com/ageorgief/BookLibrary/internal/ledger"
	"github.com/ageorgief/BookLibrary/pkg/logger"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/status"
)

type options struct {
	addr    string
	caller  string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Command line client for the lending ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.addr, "addr", envOr("LEDGER_ADDR", "localhost:50051"), "lending service gRPC address")
	root.PersistentFlags().StringVar(&opts.caller, "caller", os.Getenv("LEDGER_CALLER"), "caller address sent with mutating calls")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(
		idCmd(),
		addCmd(opts),
		borrowCmd(opts),
		returnCmd(opts),
		availableCmd(opts),
		borrowersCmd(opts),
		bookCmd(opts),
		borrowedCmd(opts),
		ownerCmd(opts),
	)
	return root
}

func idCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "id <title>",
		Short: "Print the book id derived from a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), ledger.IDFromTitle(args[0]))
			return nil
		},
	}
}

func addCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title> <copies>",
		Short: "Register copies of a title (owner only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			copies, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("copies must be a positive integer: %w", err)
			}
			return withClient(cmd, opts, func(ctx context.Context, c *clients.LedgerClient) error {
				book, err := c.AddBook(ctx, args[0], copies)
				if err != nil {
					return err
				}
				printBook(cmd, book)
				return nil
			})
		},
	}
}

func borrowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <book-id>",
		Short: "Borrow one copy of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *clients.LedgerClient) error {
				book, err := c.BorrowBook(ctx, args[0])
				if err != nil {
					return err
				}
				printBook(cmd, book)
				return nil
			})
		},
	}
}

func returnCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "return <book-id>",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *clients.LedgerClient) error {
				book, err := c.ReturnBook(ctx, args[0])
				if err != nil {
					return err
				}
				printBook(cmd, book)
				return nil
			})
		},
	}
}

func availableCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List ids of books with copies on the shelf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *clients.LedgerClient) error {
				ids, err := c.AvailableBooks(ctx)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
}

func borrowersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "borrowers <book-id>",
		Short: "List every address that borrowed a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *clients.LedgerClient) error {
				addrs, err := c.Borrowers(ctx, args[0])
				if err != nil {
					return err
				}
				for _, a := range addrs {
					fmt.Fprintln(cmd.OutOrStdout(), a)
				}
				return nil
			})
		},
	}
}

func bookCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "book <book-id>",
		Short: "Show a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *clients.LedgerClient) error {
				book, err := c.Book(ctx, args[0])
				if err != nil {
					return err
				}
				printBook(cmd, book)
				return nil
			})
		},
	}
}

func borrowedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "borrowed <address> <book-id>",
		Short: "Report whether an address currently holds a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *clients.LedgerClient) error {
				borrowed, err := c.IsBorrowed(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), borrowed)
				return nil
			})
		},
	}
}

func ownerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "owner",
		Short: "Print the ledger owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c *clients.LedgerClient) error {
				owner, err := c.Owner(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), owner)
				return nil
			})
		},
	}
}

func withClient(cmd *cobra.Command, opts *options, fn func(context.Context, *clients.LedgerClient) error) error {
	log := logger.NewLogger("ledgerctl", "error")
	defer log.Sync()

	c, err := clients.NewLedgerClient(opts.addr, opts.caller, log)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	if err := fn(ctx, c); err != nil {
		if st, ok := status.FromError(err); ok {
			return fmt.Errorf("%s: %s", st.Code(), st.Message())
		}
		return err
	}
	return nil
}

func printBook(cmd *cobra.Command, book *ledgerapi.Book) {
	if book.GetTitle() == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t(not in catalog)\n", book.GetID())
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", book.GetID(), book.GetTitle(), book.GetCopies())
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
