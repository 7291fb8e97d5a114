package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/shopsearch/pkg/search"
)

var (
	searchContext []string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Ask a single question",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the shop assistant",
	Args:  cobra.NoArgs,
	RunE:  runChatCmd,
}

func init() {
	searchCmd.Flags().StringArrayVarP(&searchContext, "context", "c", nil, "prior conversation turn (repeatable)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output the answer and records as JSON")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(chatCmd)
}

type searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.service.Search(cmd.Context(), search.Request{Query: args[0], PriorTurns: searchContext})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(map[string]any{
			"result": resp.Answer,
			"data":   resp.Records,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(resp.Answer)
	return nil
}

func runChatCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	return runChat(cmd.Context(), a.service, cmd.InOrStdin(), cmd.OutOrStdout())
}

// runChat reads questions line by line until EOF or "exit", carrying the
// conversation so far into each search.
func runChat(ctx context.Context, svc searcher, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, color.CyanString("\nAsk about products or your orders (type 'exit' to quit)"))

	scanner := bufio.NewScanner(in)
	userPrompt := color.New(color.FgGreen).FprintfFunc()
	assistantPrompt := color.New(color.FgCyan).FprintfFunc()

	var turns []string
	for {
		userPrompt(out, "\nYou: ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.ToLower(query) == "exit" {
			break
		}

		spinner := getSpinner(out, "Thinking...")
		resp, err := svc.Search(ctx, search.Request{Query: query, PriorTurns: turns})
		spinner.Finish()
		fmt.Fprint(out, "\r")

		if err != nil {
			fmt.Fprintln(out, color.RedString("Error: %v", err))
			continue
		}

		assistantPrompt(out, "Assistant: %s\n", resp.Answer)
		turns = append(turns, "User: "+query, "Assistant: "+resp.Answer)
	}

	return scanner.Err()
}
