package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/codecritic/internal/app"
	"github.com/tildaslashalef/codecritic/internal/review"
	"github.com/tildaslashalef/codecritic/internal/utils"
)

const (
	previewWidth = 60
	renderWidth  = 100
)

// ReviewsCommand returns the CLI command for working with stored reviews
// without going through the HTTP API
func ReviewsCommand() *cli.Command {
	return &cli.Command{
		Name:    "reviews",
		Aliases: []string{"r"},
		Usage:   "Submit, list, show and delete code reviews",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored reviews, newest first",
				Action: func(c *cli.Context) error {
					application, err := app.FromContext(c)
					if err != nil {
						return err
					}
					return listReviews(c, application.Review)
				},
			},
			{
				Name:      "show",
				Usage:     "Show a single review",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "raw",
						Usage: "Print the review text without markdown rendering",
					},
				},
				Action: func(c *cli.Context) error {
					application, err := app.FromContext(c)
					if err != nil {
						return err
					}
					return showReview(c, application.Review)
				},
			},
			{
				Name:      "submit",
				Usage:     "Review a source file (use - for stdin)",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "language",
						Aliases: []string{"l"},
						Usage:   "Language of the code, detected from the file when omitted",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Free-text context for the reviewer",
					},
				},
				Action: func(c *cli.Context) error {
					application, err := app.FromContext(c)
					if err != nil {
						return err
					}
					return submitReview(c, application.Review, os.Stdin)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a review",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					application, err := app.FromContext(c)
					if err != nil {
						return err
					}
					return deleteReview(c, application.Review)
				},
			},
		},
	}
}

func listReviews(c *cli.Context, svc review.ReviewService) error {
	reviews, err := svc.GetAllReviews(c.Context)
	if err != nil {
		utils.PrintError(fmt.Sprintf("Failed to list reviews: %s", err))
		return err
	}

	if len(reviews) == 0 {
		utils.PrintInfo("No reviews found")
		return nil
	}

	rows := make([][]string, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			valueOr(r.Language, "-"),
			r.CreatedAt.Local().Format(time.DateTime),
			utils.Preview(r.Code, previewWidth),
		})
	}

	utils.PrintTable(fmt.Sprintf("Reviews (%d)", len(reviews)), []string{"ID", "Language", "Created", "Code"}, rows)
	return nil
}

func showReview(c *cli.Context, svc review.ReviewService) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	r, err := svc.GetReviewByID(c.Context, id)
	if err != nil {
		utils.PrintError(err.Error())
		return err
	}

	printReview(r, c.Bool("raw"))
	return nil
}

func submitReview(c *cli.Context, svc review.ReviewService, stdin io.Reader) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("a file argument is required")
	}

	var (
		code []byte
		err  error
	)
	if path == "-" {
		code, err = io.ReadAll(stdin)
	} else {
		code, err = os.ReadFile(path)
	}
	if err != nil {
		utils.PrintError(fmt.Sprintf("Failed to read code: %s", err))
		return fmt.Errorf("reading %s: %w", path, err)
	}

	req := review.Request{Code: string(code)}

	if c.IsSet("language") {
		lang := c.String("language")
		req.Language = &lang
	} else if lang := detectLanguage(path, code); lang != "" {
		req.Language = &lang
		utils.PrintInfo("Detected language: " + lang)
	}

	if c.IsSet("description") {
		desc := c.String("description")
		req.Description = &desc
	}

	utils.PrintInfo("Requesting review...")
	r, err := svc.CreateReview(c.Context, req)
	if err != nil {
		var verr *review.ValidationError
		if errors.As(err, &verr) {
			printValidationError(verr)
			return err
		}
		utils.PrintError(fmt.Sprintf("Failed to create review: %s", err))
		return err
	}

	utils.PrintSuccess(fmt.Sprintf("Review %d created", r.ID))
	printReview(r, false)
	return nil
}

func deleteReview(c *cli.Context, svc review.ReviewService) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := svc.DeleteReview(c.Context, id); err != nil {
		utils.PrintError(err.Error())
		return err
	}

	utils.PrintSuccess(fmt.Sprintf("Review %d deleted", id))
	return nil
}

func printReview(r *review.Response, raw bool) {
	header := utils.RenderHeader(
		fmt.Sprintf("Review #%d", r.ID),
		"Language: "+valueOr(r.Language, "-"),
		"Created: "+r.CreatedAt.Local().Format(time.DateTime),
	)
	fmt.Fprintln(utils.Output, header)

	if r.Description != nil && *r.Description != "" {
		utils.PrintKeyValue("Description", utils.Wrap(*r.Description, renderWidth))
	}

	utils.PrintDivider()
	utils.PrintCode(r.Code)
	utils.PrintDivider()

	text := valueOr(r.Review, "")
	if raw {
		fmt.Fprintln(utils.Output, text)
		return
	}
	fmt.Fprintln(utils.Output, utils.RenderMarkdown(text, renderWidth))
}

func printValidationError(err *review.ValidationError) {
	utils.PrintError("Validation failed")

	keys := make([]string, 0, len(err.Fields))
	for k := range err.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		utils.PrintKeyValue(k, err.Fields[k])
	}
}

func parseID(c *cli.Context) (int64, error) {
	arg := c.Args().First()
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid review id %q", arg)
	}
	return id, nil
}

func valueOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
