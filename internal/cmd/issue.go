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
	"github.com/runger/git-forge/internal/picker"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Work with issues",
}

var (
	issueState       string
	issueLabels      []string
	issueAuthor      string
	issueOutput      string
	issueFields      []string
	issueInteractive bool
)

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues",
	Long: `List issues of the current repository.

Without --interactive the first page is printed in the chosen output
format. With --interactive a search UI opens; type to filter, use
@key=value options (state, author, labels) to refine, and press Enter on
an issue to print its URL.

Examples:
  git-forge issue list                        # open issues as TSV
  git-forge issue list --state=closed -o json
  git-forge issue list --fields=id,title,author
  git-forge issue list -i                     # interactive search`,
	Args: cobra.NoArgs,
	RunE: runIssueList,
}

var (
	issueTitle   string
	issueMessage string
	issueWeb     bool
)

var issueCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an issue",
	Long: `Create an issue in the current repository.

Without --title your editor opens on a message template: the first line
becomes the title, the rest the body. Content below the scissors marker
is ignored.

Examples:
  git-forge issue create                      # compose in $EDITOR
  git-forge issue create --title "Crash on save"
  git-forge issue create --web                # open the new-issue page`,
	Args: cobra.NoArgs,
	RunE: runIssueCreate,
}

func init() {
	issueListCmd.Flags().StringVar(&issueState, "state", "open", "filter by state: open, closed or all")
	issueListCmd.Flags().StringSliceVar(&issueLabels, "labels", nil, "filter by labels (comma-separated)")
	issueListCmd.Flags().StringVar(&issueAuthor, "author", "", "filter by author username")
	issueListCmd.Flags().StringVarP(&issueOutput, "output", "o", "tsv", "output format: tsv, csv or json")
	issueListCmd.Flags().StringSliceVar(&issueFields, "fields", nil, "fields to print (default: all)")
	issueListCmd.Flags().BoolVarP(&issueInteractive, "interactive", "i", false, "interactive search and select")

	issueCreateCmd.Flags().StringVarP(&issueTitle, "title", "t", "", "issue title")
	issueCreateCmd.Flags().StringVarP(&issueMessage, "message", "m", "", "issue body")
	issueCreateCmd.Flags().BoolVar(&issueWeb, "web", false, "open the new-issue page in the browser instead")

	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueCreateCmd)
	rootCmd.AddCommand(issueCmd)
}

func runIssueList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	setup, err := setupForge(ctx)
	if err != nil {
		return err
	}

	if issueInteractive {
		return runIssueSearch(ctx, setup)
	}

	state, err := forge.ParseIssueState(issueState)
	if err != nil {
		return err
	}
	out, err := format.ParseFormat(issueOutput)
	if err != nil {
		return err
	}

	page, err := setup.client.Issues(ctx, forge.IssueFilters{
		State:   state,
		Author:  issueAuthor,
		Labels:  issueLabels,
		Page:    1,
		PerPage: pageSize(setup),
	})
	if err != nil {
		return err
	}
	return format.Write(os.Stdout, out, issueFields, page.Items)
}

func runIssueSearch(ctx context.Context, setup *forgeSetup) error {
	fetch := func(ctx context.Context, page int, options map[string]string) ([]picker.Item[forge.Issue], bool, error) {
		filters, err := issueFiltersFromOptions(options, page, pageSize(setup))
		if err != nil {
			return nil, false, err
		}
		result, err := setup.client.Issues(ctx, filters)
		if err != nil {
			return nil, false, err
		}
		return issueItems(result.Items), result.HasNext, nil
	}

	options := map[string]string{"state": issueState}
	if issueAuthor != "" {
		options["author"] = issueAuthor
	}
	if len(issueLabels) > 0 {
		options["labels"] = strings.Join(issueLabels, ",")
	}

	logger := newSearchLogger()
	defer logger.Close()

	issue, err := picker.Run(ctx, fetch, options, searchLogHook[forge.Issue](logger))
	if selectionAborted(err) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(issue.URL)
	return nil
}

func runIssueCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	setup, err := setupForge(ctx)
	if err != nil {
		return err
	}

	if issueWeb {
		url, err := setup.client.WebURL(forge.WebTarget{Kind: forge.WebNewIssue})
		if err != nil {
			return err
		}
		return openInBrowser(ctx, setup, url)
	}

	title, body := issueTitle, issueMessage
	if title == "" {
		configured, _ := setup.cfg.Effective(config.KeyEditorCommand, setup.remote)
		command, err := editor.Command(configured)
		if err != nil {
			return err
		}
		title, body, err = editor.Prompt(ctx, command, "")
		if err != nil {
			return err
		}
	}

	issue, err := setup.client.CreateIssue(ctx, forge.CreateIssueOptions{Title: title, Body: body})
	if err != nil {
		return err
	}
	fmt.Println(issue.URL)
	return nil
}

func issueItems(issues []forge.Issue) []picker.Item[forge.Issue] {
	items := make([]picker.Item[forge.Issue], len(issues))
	for i, issue := range issues {
		items[i] = picker.Item[forge.Issue]{Display: issue.DisplayText(), Value: issue}
	}
	return items
}

// issueFiltersFromOptions maps the option keys typed in the search bar onto
// issue listing filters.
func issueFiltersFromOptions(options map[string]string, page, perPage int) (forge.IssueFilters, error) {
	filters := forge.IssueFilters{
		State:   forge.IssueStateOpen,
		Page:    page,
		PerPage: perPage,
	}
	for key, value := range options {
		switch key {
		case "state":
			state, err := forge.ParseIssueState(value)
			if err != nil {
				return forge.IssueFilters{}, err
			}
			filters.State = state
		case "author":
			filters.Author = value
		case "labels":
			filters.Labels = splitLabels(value)
		case "query":
			filters.Query = value
		default:
			return forge.IssueFilters{}, fmt.Errorf("unknown search option %q (supported: state, author, labels)", key)
		}
	}
	return filters, nil
}

func splitLabels(value string) []string {
	var labels []string
	for _, l := range strings.Split(value, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

// pageSize honors the page-size config key, falling back to the forge
// default.
func pageSize(setup *forgeSetup) int {
	if v, ok := setup.cfg.Effective(config.KeyPageSize, setup.remote); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return forge.DefaultPerPage
}
