package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DenisStobert/hh-autoapply-backend/internal/headhunter"
)

var errEmptyCode = errors.New("authorization code is required")

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain an hh.ru token pair from the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		login(cmd)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringP("code", "c", "", "authorization code or the whole callback url. Prompted when unset.")
}

func login(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	hh, err := newHeadHunter(config, logger)
	if err != nil {
		logger.Fatal("creating hh.ru client", zap.Error(err))
	}

	state := config.State
	if state == "" {
		state = "random_state"
	}
	fmt.Printf("Open the following url and authorize the application:\n\n  %s\n\n", hh.AuthCodeURL(state))

	input := cmd.Flag("code").Value.String()
	if input == "" {
		prompt := promptui.Prompt{
			Label: "Authorization code or callback url",
			Validate: func(s string) error {
				_, err := extractCode(s)
				return err
			},
		}

		input, err = prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	code, err := extractCode(input)
	if err != nil {
		logger.Fatal("parsing authorization code", zap.Error(err))
	}

	token, err := hh.Exchange(ctx, code)
	if err != nil {
		logger.Fatal("exchanging authorization code",
			zap.Error(err),
			zap.String("body", headhunter.ErrorBody(err)),
		)
	}

	pretty, _ := json.MarshalIndent(token, "", "  ")
	fmt.Println(string(pretty))
}

// extractCode accepts either a bare code or a callback url carrying ?code=.
func extractCode(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errEmptyCode
	}

	if !strings.Contains(input, "code=") {
		return input, nil
	}

	raw := input
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}

	q, err := url.ParseQuery(raw)
	if err != nil {
		return "", fmt.Errorf("parsing callback url: %w", err)
	}

	code := strings.TrimSpace(q.Get("code"))
	if code == "" {
		return "", errEmptyCode
	}

	return code, nil
}
