package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Domenick1991/civicbook/internal/bootstrap"
	"github.com/Domenick1991/civicbook/internal/domain"
	"github.com/Domenick1991/civicbook/internal/service/submission"
	"github.com/google/uuid"
)

type command func(ctx context.Context, app *bootstrap.App, args []string) error

var commands = map[string]command{
	"check":        runCheck,
	"availability": runAvailability,
	"schedule":     runSchedule,
	"quote":        runQuote,
	"submit":       runSubmit,
	"advance":      runAdvance,
	"cancel":       runCancel,
	"list":         runList,
	"find":         runFind,
}

var errMissingFlag = errors.New("missing required flag")

func runCheck(ctx context.Context, app *bootstrap.App, _ []string) error {
	if app.Producer != nil {
		if err := app.Producer.CheckConnection(ctx); err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
	}

	categories := make([]string, 0, len(app.Config.Categories))
	for name := range app.Config.Categories {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	return printJSON(map[string]any{
		"status":     "ok",
		"store":      app.Config.Store.Driver,
		"lock":       app.Config.Booking.Lock,
		"events":     app.Config.Kafka.Enabled,
		"categories": categories,
		"resources":  len(app.Config.Resources),
	})
}

func runAvailability(ctx context.Context, app *bootstrap.App, args []string) error {
	fs := flag.NewFlagSet("availability", flag.ContinueOnError)
	resource := fs.String("resource", "", "resource id")
	date := fs.String("date", "", "date, YYYY-MM-DD")
	slot := fs.String("slot", "", "slot label, HH:MM-HH:MM")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]string{"resource": *resource, "date": *date, "slot": *slot}); err != nil {
		return err
	}

	report, err := app.Catalog.Availability(ctx, *resource, *date, *slot)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runSchedule(ctx context.Context, app *bootstrap.App, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ContinueOnError)
	resource := fs.String("resource", "", "resource id")
	date := fs.String("date", "", "date, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]string{"resource": *resource, "date": *date}); err != nil {
		return err
	}

	schedule, err := app.Catalog.DaySchedule(ctx, *resource, *date)
	if err != nil {
		return err
	}
	return printJSON(schedule)
}

func runQuote(ctx context.Context, app *bootstrap.App, args []string) error {
	input, err := readInput("quote", args)
	if err != nil {
		return err
	}
	quote, err := app.Submissions.Quote(ctx, input)
	if err != nil {
		return err
	}
	return printJSON(quote)
}

func runSubmit(ctx context.Context, app *bootstrap.App, args []string) error {
	input, err := readInput("submit", args)
	if err != nil {
		return err
	}
	record, err := app.Submissions.Submit(ctx, input)
	if err != nil {
		return err
	}
	return printJSON(record)
}

func runAdvance(ctx context.Context, app *bootstrap.App, args []string) error {
	category, id, err := recordFlags("advance", args)
	if err != nil {
		return err
	}
	record, err := app.Submissions.Advance(ctx, category, id)
	if err != nil {
		return err
	}
	return printJSON(record)
}

func runCancel(ctx context.Context, app *bootstrap.App, args []string) error {
	category, id, err := recordFlags("cancel", args)
	if err != nil {
		return err
	}
	record, err := app.Submissions.Cancel(ctx, category, id)
	if err != nil {
		return err
	}
	return printJSON(record)
}

func runList(ctx context.Context, app *bootstrap.App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	raw := fs.String("category", "", "request category")
	if err := fs.Parse(args); err != nil {
		return err
	}
	category, err := domain.ParseCategory(*raw)
	if err != nil {
		return err
	}
	records, err := app.Submissions.List(ctx, category)
	if err != nil {
		return err
	}
	return printJSON(records)
}

func runFind(ctx context.Context, app *bootstrap.App, args []string) error {
	fs := flag.NewFlagSet("find", flag.ContinueOnError)
	ref := fs.String("ref", "", "reference code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]string{"ref": *ref}); err != nil {
		return err
	}
	records, err := app.Submissions.FindByReference(ctx, *ref)
	if err != nil {
		return err
	}
	return printJSON(records)
}

func readInput(name string, args []string) (submission.Input, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	file := fs.String("file", "", "path to a request JSON document, - for stdin")
	if err := fs.Parse(args); err != nil {
		return submission.Input{}, err
	}
	if err := required(map[string]string{"file": *file}); err != nil {
		return submission.Input{}, err
	}

	var (
		data []byte
		err  error
	)
	if *file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*file)
	}
	if err != nil {
		return submission.Input{}, fmt.Errorf("read input: %w", err)
	}

	var input submission.Input
	if err := json.Unmarshal(data, &input); err != nil {
		return submission.Input{}, fmt.Errorf("decode input: %w", err)
	}
	return input, nil
}

func recordFlags(name string, args []string) (domain.Category, uuid.UUID, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	rawCategory := fs.String("category", "", "request category")
	rawID := fs.String("id", "", "record id")
	if err := fs.Parse(args); err != nil {
		return "", uuid.Nil, err
	}
	category, err := domain.ParseCategory(*rawCategory)
	if err != nil {
		return "", uuid.Nil, err
	}
	id, err := uuid.Parse(*rawID)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("invalid record id %q: %w", *rawID, err)
	}
	return category, id, nil
}

func required(flags map[string]string) error {
	names := make([]string, 0, len(flags))
	for name, value := range flags {
		if value == "" {
			names = append(names, "-"+name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return fmt.Errorf("%w: %v", errMissingFlag, names)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
