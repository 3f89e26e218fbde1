package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// Commands builds the inked subcommands. current is resolved when a
// command runs, after the root command has loaded configuration.
func Commands(current func() *Cli) []*cobra.Command {
	return []*cobra.Command{
		loginCmd(current),
		logoutCmd(current),
		statusCmd(current),
		profileCmd(current),
		postCmd(current),
		commentCmd(current),
		rateCmd(current),
		collectCmd(current),
		followCmd(current),
		listCmd(current),
		showCmd(current),
		deleteCmd(current),
		syncCmd(current),
		queueCmd(current),
		conflictsCmd(current),
		resolveCmd(current),
		productsCmd(current),
		recognizeCmd(current),
	}
}

func loginCmd(current func() *Cli) *cobra.Command {
	var tokenFile string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token issued by the identity provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return current().runLogin(cmd.Context(), tokenFile)
		},
	}
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "read the token from a file instead of the prompt")
	return cmd
}

func logoutCmd(current func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return current().runLogout(cmd.Context())
		},
	}
}

func statusCmd(current func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and outbox status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return current().runStatus(cmd.Context())
		},
	}
}

func profileCmd(current func() *Cli) *cobra.Command {
	var in profileInput
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Create or update your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return current().runProfile(cmd.Context(), in)
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "public handle")
	cmd.Flags().StringVar(&in.DisplayName, "display-name", "", "display name")
	cmd.Flags().StringVar(&in.Bio, "bio", "", "short bio")
	cmd.Flags().StringVar(&in.BirthDate, "birth-date", "", "birth date (YYYY-MM-DD), required for age verification")
	cmd.Flags().StringSliceVar(&in.Pairings, "pairings", nil, "preferred pairings")
	return cmd
}

func postCmd(current func() *Cli) *cobra.Command {
	var productID, imageURL string
	cmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Publish a feed post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current().runPost(cmd.Context(), args[0], productID, imageURL)
		},
	}
	cmd.Flags().StringVar(&productID, "product", "", "product the post is about")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "image URL")
	return cmd
}

func commentCmd(current func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <content>",
		Short: "Comment on a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current().runComment(cmd.Context(), args[0], args[1])
		},
	}
}

func rateCmd(current func() *Cli) *cobra.Command {
	var in ratingInput
	cmd := &cobra.Command{
		Use:   "rate <product-id> <score>",
		Short: "Rate a product from 1 to 5",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return err
			}
			in.ProductID, in.Score = args[0], score
			return current().runRate(cmd.Context(), in)
		},
	}
	cmd.Flags().StringVarP(&in.ProductType, "type", "t", "cigar", "product type (cigar, beer, wine)")
	cmd.Flags().StringVar(&in.Review, "review", "", "review text")
	cmd.Flags().StringSliceVar(&in.FlavorNotes, "notes", nil, "flavor notes")
	return cmd
}

func collectCmd(current func() *Cli) *cobra.Command {
	var in collectionInput
	cmd := &cobra.Command{
		Use:   "collect <product-id>",
		Short: "Add a product to your humidor or cellar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.ProductID = args[0]
			return current().runCollect(cmd.Context(), in)
		},
	}
	cmd.Flags().StringVarP(&in.ProductType, "type", "t", "cigar", "product type (cigar, beer, wine)")
	cmd.Flags().IntVarP(&in.Quantity, "quantity", "n", 1, "quantity")
	cmd.Flags().StringVar(&in.Location, "location", "", "shelf or drawer")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "notes")
	return cmd
}

func followCmd(current func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "follow <user-id>",
		Short: "Follow another user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current().runFollow(cmd.Context(), args[0])
		},
	}
}

func listCmd(current func() *Cli) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "List local records of a table",
		Long: `List local records of a table: users, collection_items, ratings,
posts, comments or follows. With --watch the list is reprinted after
every local change until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Table = args[0]
			return current().runList(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of records")
	cmd.Flags().BoolVar(&opts.Mine, "mine", false, "only records owned by you")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "keep printing on changes")
	return cmd
}

func showCmd(current func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <table> <id>",
		Short: "Show one record with its sync state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current().runShow(cmd.Context(), args[0], args[1])
		},
	}
}

func deleteCmd(current func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current().runDelete(cmd.Context(), args[0], args[1])
		},
	}
}

func syncCmd(current func() *Cli) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Send queued changes and pull server changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watch {
				return current().runSyncWatch(cmd.Context())
			}
			return current().runSync(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep syncing in the background until interrupted")
	return cmd
}

func queueCmd(current func() *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the outbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return current().runQueueList(cmd.Context())
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "retry",
		Short: "Requeue failed entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return current().runQueueRetry(cmd.Context())
		},
	})
	return cmd
}

func conflictsCmd(current func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List records waiting for conflict resolution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return current().runConflicts(cmd.Context())
		},
	}
}

func resolveCmd(current func() *Cli) *cobra.Command {
	var keep string
	cmd := &cobra.Command{
		Use:   "resolve <table> <id>",
		Short: "Resolve a conflict by keeping the local or the server copy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current().runResolve(cmd.Context(), args[0], args[1], keep)
		},
	}
	cmd.Flags().StringVar(&keep, "keep", "", "local or remote")
	_ = cmd.MarkFlagRequired("keep")
	return cmd
}

func productsCmd(current func() *Cli) *cobra.Command {
	var opts productSearch
	cmd := &cobra.Command{
		Use:   "products [query]",
		Short: "Search the product catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Query = args[0]
			}
			return current().runProducts(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "product type (cigar, beer, wine)")
	cmd.Flags().StringVar(&opts.Brand, "brand", "", "brand")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "page offset")
	return cmd
}

func recognizeCmd(current func() *Cli) *cobra.Command {
	var productType string
	cmd := &cobra.Command{
		Use:   "recognize <image>",
		Short: "Identify a product from a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return current().runRecognize(cmd.Context(), args[0], productType)
		},
	}
	cmd.Flags().StringVarP(&productType, "type", "t", "cigar", "product type (cigar, beer, wine)")
	return cmd
}
