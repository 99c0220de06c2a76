package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhictrl/Reflexion-Interviewer/internal/assessment"
	"github.com/abhictrl/Reflexion-Interviewer/internal/interview"
	"github.com/abhictrl/Reflexion-Interviewer/internal/profile"
)

const (
	PromptGenerateReport = "Generate assessment report"
	PromptExit           = "Exit"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interview session in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		runInterview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().StringP("resume-file", "r", "", "path to a plain-text resume")
	interviewCmd.Flags().StringP("job-description-file", "D", "", "path to the job description")

	interviewCmd.MarkFlagRequired("resume-file")
	interviewCmd.MarkFlagRequired("job-description-file")
}

// runInterview drives a full interview loop on the terminal: extract the
// profile, ask questions until the session completes, then optionally print
// the assessment report.
func runInterview(cmd *cobra.Command) {
	ctx := context.Background()

	zl := newLogger()

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	completer, err := buildCompleter(ctx, config.AI, zl)
	if err != nil {
		zl.Fatal("building the AI backend", zap.Error(err))
	}

	resumeText := readFileFlag(cmd, "resume-file", zl)
	jobDescription := readFileFlag(cmd, "job-description-file", zl)

	analyzer := profile.NewAnalyzer(completer, zl)
	candidate, err := analyzer.Analyze(ctx, resumeText)
	if err != nil {
		zl.Fatal("analyzing the resume", zap.Error(err))
	}

	catalog := interview.DefaultCatalog()

	orchestrator, err := interview.NewOrchestrator(catalog, completer, zl, *candidate, jobDescription)
	if err != nil {
		zl.Fatal("creating the interview session", zap.Error(err))
	}

	opening, err := orchestrator.GenerateOpening(ctx)
	if err != nil {
		zl.Fatal("generating the opening message", zap.Error(err))
	}

	fmt.Printf("\nInterviewer: %s\n\n", opening)

	answerPrompt := promptui.Prompt{
		Label: "You",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("answer must not be empty")
			}
			return nil
		},
	}

	for orchestrator.State().Status == interview.StatusActive {
		answer, err := answerPrompt.Run()
		if err != nil {
			zl.Info("exiting", zap.String("reason", "prompt aborted"))
			return
		}

		reply, err := orchestrator.Process(ctx, answer)
		if err != nil {
			zl.Fatal("processing the answer", zap.Error(err))
		}

		fmt.Printf("\nInterviewer: %s\n\n", reply)
	}

	finishPrompt := promptui.Select{
		Label: "Interview complete",
		Items: []string{PromptGenerateReport, PromptExit},
	}

	_, action, err := finishPrompt.Run()
	if err != nil || action != PromptGenerateReport {
		return
	}

	state := orchestrator.State()
	skills := append([]string{}, state.Profile.Skills.Languages...)
	skills = append(skills, state.Profile.Skills.Frameworks...)

	report := assessment.NewEngine(completer, catalog, zl).Generate(ctx, state, skills)

	pretty, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		zl.Fatal("rendering the report", zap.Error(err))
	}

	fmt.Println(string(pretty))
}

func readFileFlag(cmd *cobra.Command, name string, zl *zap.Logger) string {
	path := cmd.Flag(name).Value.String()

	content, err := os.ReadFile(path)
	if err != nil {
		zl.Fatal("reading the "+name, zap.Error(err))
	}

	return string(content)
}
