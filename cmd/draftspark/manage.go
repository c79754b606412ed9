package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pawelsloboda5/draft-spark-compose/internal/database"
	"github.com/pawelsloboda5/draft-spark-compose/internal/generate"
	"github.com/pawelsloboda5/draft-spark-compose/internal/profile"
	"github.com/pawelsloboda5/draft-spark-compose/internal/trends"
)

// --- trends command ---

var trendsNiche string

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show current trends for --niche (default: the user's niche)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		niche := trendsNiche
		if niche == "" {
			p, err := db.GetProfile(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("no profile for %s; pass --niche or run 'draftspark profile set'", userID)
			}
			niche = p.Niche
		}

		res := newResolver(db).ResolveDetailed(cmd.Context(), niche)
		fmt.Printf("Trends for %s (category %s, from %s):\n", niche, res.Category, res.Source)
		if len(res.Trends) == 0 {
			fmt.Println("  (none available)")
		}
		for _, t := range res.Trends {
			fmt.Printf("  • %s\n", t)
		}
		return nil
	},
}

var trendsRefreshConcurrency int

var trendsRefreshCmd = &cobra.Command{
	Use:   "refresh [niche...]",
	Short: "Refresh the trend cache for the given niches (default: all known niches)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		niches := args
		if len(niches) == 0 {
			niches = profile.Niches
		}

		result := trends.NewRefresher(newResolver(db), trendsRefreshConcurrency).RefreshAll(cmd.Context(), niches)
		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}
		if result.Failed() {
			return fmt.Errorf("some niches have no trends available")
		}
		return nil
	},
}

func init() {
	trendsCmd.Flags().StringVarP(&trendsNiche, "niche", "n", "", "Niche to resolve")
	trendsRefreshCmd.Flags().IntVar(&trendsRefreshConcurrency, "concurrency", 2, "Niches refreshed in parallel")
	trendsCmd.AddCommand(trendsRefreshCmd)
}

// --- generate command ---

var (
	generateSample   string
	generateHeadline string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and save one post for --user",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		gen := newGenerator(db, newResolver(db))
		post, err := gen.Generate(cmd.Context(), generate.Request{
			UserID:     userID,
			SampleText: generateSample,
			Headline:   generateHeadline,
		})
		if err != nil {
			return err
		}
		fmt.Printf("[%d] %s\n", post.ID, post.Content)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateSample, "sample", "", "One-off writing sample for this post only")
	generateCmd.Flags().StringVar(&generateHeadline, "headline", "", "Headline to anchor the post on")
}

// --- profile command ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or set the niche and tone for --user",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		p, err := profile.NewService(db, nil).Get(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if p == nil {
			fmt.Printf("No profile for %s. Set one with: draftspark profile set [niche] [tone]\n", userID)
			fmt.Printf("  Niches: %s\n", strings.Join(profile.Niches, ", "))
			fmt.Printf("  Tones:  %s\n", strings.Join(profile.Tones, ", "))
			return nil
		}
		fmt.Printf("User:  %s\nNiche: %s\nTone:  %s\nUpdated: %s\n", p.UserID, p.Niche, p.Tone, p.UpdatedAt)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set [niche] [tone]",
	Short: "Create or replace the profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		svc := profile.NewService(db, nil)
		p, err := svc.Upsert(cmd.Context(), userID, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Profile saved: %s / %s\n", p.Niche, p.Tone)
		if !slices.Contains(profile.Niches, p.Niche) {
			fmt.Printf("Note: %q is not a known niche; general headlines will be used.\n", p.Niche)
		}
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
}

// --- samples command ---

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Manage writing samples for --user",
}

var samplesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List writing samples, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		samples, err := profile.NewService(db, nil).ListSamples(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			fmt.Println("No writing samples. Add one with: draftspark samples add [text]")
			return nil
		}
		for _, s := range samples {
			fmt.Printf("  [%d] %s\n", s.ID, preview(s.Content))
		}
		return nil
	},
}

var samplesAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add a writing sample (truncated to 280 characters)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		s, err := profile.NewService(db, nil).AddSample(cmd.Context(), userID, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("Added sample [%d]\n", s.ID)
		return nil
	},
}

var samplesRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a writing sample",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sample ID: %s", args[0])
		}
		if err := profile.NewService(db, nil).DeleteSample(cmd.Context(), userID, id); err != nil {
			return fmt.Errorf("sample %d: %w", id, err)
		}
		fmt.Printf("Removed sample [%d]\n", id)
		return nil
	},
}

func init() {
	samplesCmd.AddCommand(samplesListCmd)
	samplesCmd.AddCommand(samplesAddCmd)
	samplesCmd.AddCommand(samplesRemoveCmd)
}

// --- posts command ---

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Manage generated posts for --user",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated posts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		posts, err := db.ListPosts(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			fmt.Println("No posts yet. Create one with: draftspark generate")
			return nil
		}
		for _, p := range posts {
			icon := " "
			if p.Favorited {
				icon = "*"
			}
			fmt.Printf("  [%d] %s %s\n", p.ID, icon, p.Content)
			fmt.Printf("        %s\n", p.CreatedAt)
		}
		return nil
	},
}

func postAction(use, short string, apply func(cmd *cobra.Command, db *database.DB, id int64) error, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid post ID: %s", args[0])
			}
			if err := apply(cmd, db, id); err != nil {
				return err
			}
			fmt.Printf("Post [%d] %s\n", id, done)
			return nil
		},
	}
}

func init() {
	postsCmd.AddCommand(postsListCmd)
	postsCmd.AddCommand(postAction("favorite", "Mark a post as favorite",
		func(cmd *cobra.Command, db *database.DB, id int64) error {
			return db.SetFavorited(cmd.Context(), userID, id, true)
		}, "favorited"))
	postsCmd.AddCommand(postAction("unfavorite", "Remove a post from favorites",
		func(cmd *cobra.Command, db *database.DB, id int64) error {
			return db.SetFavorited(cmd.Context(), userID, id, false)
		}, "unfavorited"))
	postsCmd.AddCommand(postAction("delete", "Delete a post",
		func(cmd *cobra.Command, db *database.DB, id int64) error {
			return db.DeletePost(cmd.Context(), userID, id)
		}, "deleted"))
}

func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > 60 {
		return string(r[:60]) + "..."
	}
	return s
}
