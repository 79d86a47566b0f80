// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ManuGH/textfeature/internal/feature"
	"github.com/ManuGH/textfeature/internal/keyword"
	"github.com/ManuGH/textfeature/internal/pattern"
)

type extractOptions struct {
	unique bool
	html   bool
	file   string
	dict   string
}

type keywordsOutput struct {
	Keywords []string `json:"keywords"`
}

type regexOutput struct {
	Regex pattern.Matches `json:"regex"`
}

type tokensOutput struct {
	Tokens []string `json:"tokens"`
}

func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract [text...]",
		Short: "Extract nouns and patterns from text",
		Long:  "Extract nouns and patterns. The text comes from the arguments, from --file, or from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), opts.file, args)
			if err != nil {
				return err
			}
			svc, err := newLocalService(cmd.Context(), opts.dict)
			if err != nil {
				return err
			}
			if opts.html {
				text = feature.TextFromHTML(text)
			}

			ctx := cmd.Context()
			if opts.unique {
				keywords, err := svc.UniqueKeywords(ctx, text)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), keywordsOutput{Keywords: nonNil(keywords)})
			}
			res, err := svc.Extract(ctx, text)
			if err != nil {
				return err
			}
			res.Nouns = nonNil(res.Nouns)
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&opts.unique, "unique", false, "print one flat keyword list (nouns, then pattern values)")
	cmd.Flags().BoolVar(&opts.html, "html", false, "treat the input as HTML and extract its visible text")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read the text from a file (- for stdin)")
	cmd.Flags().StringVar(&opts.dict, "dict", "", "user dictionary file to load first")
	return cmd
}

func newRegexCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "regex [text...]",
		Short: "Extract only the structured patterns from text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), regexOutput{Regex: pattern.Extract(text)})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file (- for stdin)")
	return cmd
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <filename>",
		Short: "Split a file name into search tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), tokensOutput{Tokens: nonNil(keyword.SplitFilenameTokens(args[0]))})
		},
	}
}

// readInput returns the text from file, from args, or from stdin, in that
// order of preference.
func readInput(stdin io.Reader, file string, args []string) (string, error) {
	var data []byte
	var err error
	switch {
	case file == "-":
		data, err = io.ReadAll(stdin)
	case file != "":
		// #nosec G304 -- the operator names the input file
		data, err = os.ReadFile(file)
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("read input: not valid UTF-8")
	}
	return string(data), nil
}

// newLocalService builds an in-process service without cache or store.
func newLocalService(ctx context.Context, dictPath string) (*feature.Service, error) {
	extractor, err := keyword.New()
	if err != nil {
		return nil, err
	}
	svc := feature.NewService(extractor, nil, nil, feature.Config{})
	if dictPath != "" {
		if err := svc.ReloadDictionaryFile(ctx, dictPath); err != nil {
			return nil, err
		}
	}
	return svc, nil
}
