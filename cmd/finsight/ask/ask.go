// Package askcmder provides the ask command for one-shot financial
// questions against a running finsight API server.
package askcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/finsightco/finsight/pkg/cliui"
	"github.com/finsightco/finsight/pkg/config"
)

var (
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(2)
)

const askLongDesc string = `Ask a one-shot financial question.

The question is sent to a running finsight API server, which answers it
using retrieval over the market-news corpus and the financial tool set.
Start a server first with "finsight serve".

Examples:
  finsight ask "What is the market sentiment for technology companies?"
  finsight ask --target http://myhost:8000 "Calculate the P/E ratio for a price of 120 and EPS of 6"`

const askShortDesc string = "Ask a one-shot financial question"

type askCommander struct {
	target string
}

// analyzeRequest mirrors the API server's /analyze request body.
type analyzeRequest struct {
	Query string `json:"query"`
}

// analyzeResponse mirrors the API server's /analyze response body.
type analyzeResponse struct {
	Query            string `json:"query"`
	Response         string `json:"response"`
	ContextUsed      bool   `json:"context_used"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("target") {
				cmder.target = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), strings.Join(args, " "))
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.target, "target", "t", defaults.Client.APITarget, "Finsight API server URL")

	return cmd
}

func (c *askCommander) run(ctx context.Context, question string) error {
	fmt.Printf("\n  %s %s\n\n", questionStyle.Render("?"), question)

	var result analyzeResponse
	if err := cliui.Step(os.Stdout, "Analyzing", func() error {
		var askErr error
		result, askErr = c.analyze(ctx, question)
		return askErr
	}); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(answerStyle.Render(result.Response))
	fmt.Println()

	details := fmt.Sprintf("answered in %s", cliui.FormatDuration(time.Duration(result.ProcessingTimeMs)*time.Millisecond))
	if result.ContextUsed {
		details += " using retrieved context"
	}
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render(details))

	return nil
}

// analyze posts the question to the API server's /analyze endpoint.
func (c *askCommander) analyze(ctx context.Context, question string) (analyzeResponse, error) {
	body, err := json.Marshal(analyzeRequest{Query: question})
	if err != nil {
		return analyzeResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.target, "/") + "/analyze"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return analyzeResponse{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		// Analysis can involve several LLM and tool round trips.
		Timeout: 5 * time.Minute,
	}

	resp, err := client.Do(req)
	if err != nil {
		return analyzeResponse{}, fmt.Errorf("sending request to %s: %w", c.target, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return analyzeResponse{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return analyzeResponse{}, fmt.Errorf("server rejected the question: %s", apiErr.Error)
		}
		return analyzeResponse{}, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var result analyzeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return analyzeResponse{}, fmt.Errorf("parsing response: %w", err)
	}

	return result, nil
}
