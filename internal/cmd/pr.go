package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/git-forge/internal/config"
	"github.com/runger/git-forge/internal/editor"
	"github.com/runger/git-forge/internal/forge"
	"github.com/runger/git-forge/internal/format"
	"github.com/runger/git-forge/internal/git"
	"github.com/runger/git-forge/internal/picker"
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Work with pull requests",
}

var (
	prState       string
	prLabels      []string
	prAuthor      string
	prDraftOnly   bool
	prOutput      string
	prFields      []string
	prInteractive bool
)

var prListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pull requests",
	Long: `List pull requests of the current repository.

Works like "issue list" with additional pull request fields: source and
target branches, draft status, created and updated timestamps.

Examples:
  git-forge pr list
  git-forge pr list --state=merged -o json
  git-forge pr list --fields=id,title,source,target
  git-forge pr list -i`,
	Args: cobra.NoArgs,
	RunE: runPRList,
}

var prCheckoutCmd = &cobra.Command{
	Use:   "checkout [number]",
	Short: "Check out a pull request locally",
	Long: `Fetch a pull request's head into a local pr-<number> branch and check
it out. Without a number, pick the pull request interactively.

Examples:
  git-forge pr checkout 128
  git-forge pr checkout`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPRCheckout,
}

var (
	prTitle   string
	prMessage string
	prDraft   bool
	prTarget  string
	prWeb     bool
)

var prCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a pull request from the current branch",
	Long: `Create a pull request for the current branch. The branch is pushed to
the remote with an upstream first. The title defaults to the branch
name; use --title or the editor to change it.

Examples:
  git-forge pr create
  git-forge pr create --title "Add feature" --target develop
  git-forge pr create --draft`,
	Args: cobra.NoArgs,
	RunE: runPRCreate,
}

func init() {
	prListCmd.Flags().StringVar(&prState, "state", "open", "filter by state: open, closed, merged or all")
	prListCmd.Flags().StringSliceVar(&prLabels, "labels", nil, "filter by labels (comma-separated)")
	prListCmd.Flags().StringVar(&prAuthor, "author", "", "filter by author username")
	prListCmd.Flags().BoolVar(&prDraftOnly, "draft", false, "only show draft pull requests")
	prListCmd.Flags().StringVarP(&prOutput, "output", "o", "tsv", "output format: tsv, csv or json")
	prListCmd.Flags().StringSliceVar(&prFields, "fields", nil, "fields to print (default: all)")
	prListCmd.Flags().BoolVarP(&prInteractive, "interactive", "i", false, "interactive search and select")

	prCreateCmd.Flags().StringVarP(&prTitle, "title", "t", "", "pull request title (default: branch name)")
	prCreateCmd.Flags().StringVarP(&prMessage, "message", "m", "", "pull request body")
	prCreateCmd.Flags().BoolVar(&prDraft, "draft", false, "create as draft")
	prCreateCmd.Flags().StringVar(&prTarget, "target", "", "target branch (default: the remote's default branch)")
	prCreateCmd.Flags().BoolVar(&prWeb, "web", false, "open the compare page in the browser instead")

	prCmd.AddCommand(prListCmd)
	prCmd.AddCommand(prCheckoutCmd)
	prCmd.AddCommand(prCreateCmd)
	rootCmd.AddCommand(prCmd)
}

func runPRList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	setup, err := setupForge(ctx)
	if err != nil {
		return err
	}

	if prInteractive {
		pr, err := pickPullRequest(ctx, setup)
		if selectionAborted(err) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println(pr.URL)
		return nil
	}

	state, err := forge.ParsePullRequestState(prState)
	if err != nil {
		return err
	}
	out, err := format.ParseFormat(prOutput)
	if err != nil {
		return err
	}

	page, err := setup.client.PullRequests(ctx, forge.PullRequestFilters{
		State:   state,
		Author:  prAuthor,
		Labels:  prLabels,
		Draft:   prDraftOnly,
		Page:    1,
		PerPage: pageSize(setup),
	})
	if err != nil {
		return err
	}
	return format.Write(os.Stdout, out, prFields, page.Items)
}

func runPRCheckout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	setup, err := setupForge(ctx)
	if err != nil {
		return err
	}

	var number int
	if len(args) == 1 {
		number, err = strconv.Atoi(args[0])
		if err != nil || number <= 0 {
			return fmt.Errorf("invalid pull request number %q", args[0])
		}
	} else {
		pr, err := pickPullRequest(ctx, setup)
		if selectionAborted(err) {
			return nil
		}
		if err != nil {
			return err
		}
		number = pr.ID
	}

	branch := fmt.Sprintf("pr-%d", number)
	if err := git.FetchPullRequest(ctx, setup.remoteName, setup.client.PullRequestRef(number), branch); err != nil {
		return err
	}
	if err := git.CheckoutBranch(ctx, branch); err != nil {
		return err
	}
	fmt.Printf("Checked out pull request %d as %s\n", number, branch)
	return nil
}

func runPRCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	setup, err := setupForge(ctx)
	if err != nil {
		return err
	}

	branch, err := git.CurrentBranch(ctx)
	if err != nil {
		return err
	}

	target := prTarget
	if target == "" {
		target, _ = setup.cfg.Effective(config.KeyPRTarget, setup.remote)
	}
	if target == "" {
		target, err = git.DefaultBranch(ctx, setup.remoteName)
		if err != nil {
			return err
		}
	}
	if branch == target {
		return fmt.Errorf("current branch %q is the target branch; check out a feature branch first", branch)
	}

	if prWeb {
		url, err := setup.client.WebURL(forge.WebTarget{Kind: forge.WebPullRequests})
		if err != nil {
			return err
		}
		return openInBrowser(ctx, setup, url)
	}

	title, body := prTitle, prMessage
	if title == "" {
		configured, _ := setup.cfg.Effective(config.KeyEditorCommand, setup.remote)
		command, err := editor.Command(configured)
		if err != nil {
			return err
		}
		title, body, err = editor.Prompt(ctx, command, branch)
		if err != nil {
			return err
		}
	}

	if err := git.PushBranch(ctx, setup.remoteName, branch, true); err != nil {
		return err
	}

	pr, err := setup.client.CreatePullRequest(ctx, forge.CreatePullRequestOptions{
		Title:        title,
		Body:         body,
		SourceBranch: branch,
		TargetBranch: target,
		Draft:        prDraft,
	})
	if err != nil {
		return err
	}
	fmt.Println(pr.URL)
	return nil
}

func pickPullRequest(ctx context.Context, setup *forgeSetup) (forge.PullRequest, error) {
	fetch := func(ctx context.Context, page int, options map[string]string) ([]picker.Item[forge.PullRequest], bool, error) {
		filters, err := prFiltersFromOptions(options, page, pageSize(setup))
		if err != nil {
			return nil, false, err
		}
		result, err := setup.client.PullRequests(ctx, filters)
		if err != nil {
			return nil, false, err
		}
		items := make([]picker.Item[forge.PullRequest], len(result.Items))
		for i, pr := range result.Items {
			items[i] = picker.Item[forge.PullRequest]{Display: pr.DisplayText(), Value: pr}
		}
		return items, result.HasNext, nil
	}

	options := map[string]string{"state": prState}
	if prAuthor != "" {
		options["author"] = prAuthor
	}
	if len(prLabels) > 0 {
		options["labels"] = strings.Join(prLabels, ",")
	}
	if prDraftOnly {
		options["draft"] = "true"
	}

	logger := newSearchLogger()
	defer logger.Close()

	return picker.Run(ctx, fetch, options, searchLogHook[forge.PullRequest](logger))
}

// prFiltersFromOptions maps the option keys typed in the search bar onto
// pull request listing filters.
func prFiltersFromOptions(options map[string]string, page, perPage int) (forge.PullRequestFilters, error) {
	filters := forge.PullRequestFilters{
		State:   forge.PRStateOpen,
		Page:    page,
		PerPage: perPage,
	}
	for key, value := range options {
		switch key {
		case "state":
			state, err := forge.ParsePullRequestState(value)
			if err != nil {
				return forge.PullRequestFilters{}, err
			}
			filters.State = state
		case "author":
			filters.Author = value
		case "labels":
			filters.Labels = splitLabels(value)
		case "draft":
			draft, err := strconv.ParseBool(value)
			if err != nil {
				return forge.PullRequestFilters{}, fmt.Errorf("invalid draft value %q", value)
			}
			filters.Draft = draft
		case "query":
			filters.Query = value
		default:
			return forge.PullRequestFilters{}, fmt.Errorf("unknown search option %q (supported: state, author, labels, draft)", key)
		}
	}
	return filters, nil
}
