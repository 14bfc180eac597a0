package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"roomviz/internal/client"
	"roomviz/internal/session"
	"roomviz/internal/vision"
)

type options struct {
	server      string
	room        string
	items       string
	articles    string
	roomType    string
	designStyle string
	provider    string
	listOnly    bool
	category    string
	timeout     time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.server, "server", "http://localhost:8080", "Base URL of the generation service")
	flag.StringVar(&opts.room, "room", "", "Room photo: a local file or an http(s) URL")
	flag.StringVar(&opts.items, "items", "", "Comma-separated catalog item ids to place in the room")
	flag.StringVar(&opts.articles, "articles", "", "Comma-separated IKEA article numbers to resolve and place")
	flag.StringVar(&opts.roomType, "room-type", string(vision.RoomLivingRoom), "Room type")
	flag.StringVar(&opts.designStyle, "style", string(vision.StyleModern), "Design style")
	flag.StringVar(&opts.provider, "provider", string(client.DefaultProvider), "Provider: openai, gemini or decor8")
	flag.BoolVar(&opts.listOnly, "list", false, "List the catalog and exit")
	flag.StringVar(&opts.category, "category", "", "Category filter for -list")
	flag.DurationVar(&opts.timeout, "timeout", 200*time.Second, "Overall request timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	c := client.New(opts.server, nil)
	if err := run(ctx, c, opts, os.Stdout); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, opts options, out io.Writer) error {
	if opts.listOnly {
		return listCatalog(ctx, c, opts.category, out)
	}

	state, err := buildSession(ctx, c, opts)
	if err != nil {
		return err
	}

	state, err = state.BeginGeneration()
	if err != nil {
		return errors.New(state.Error)
	}

	color.New(color.FgCyan).Fprintf(out, "Generating with %s: %d item(s), %s, %s\n",
		state.Provider, len(state.SelectedItems), state.RoomType.Label(), state.DesignStyle.Label())

	resp := c.Generate(ctx, state.Request())
	state = state.ApplyResponse(resp, uuid.NewString(), time.Now())

	if state.Status != session.StatusComplete {
		if resp.Suggestion != "" {
			color.New(color.FgYellow).Fprintf(out, "%s\n", resp.Suggestion)
		}
		return errors.New(state.Error)
	}

	color.New(color.FgGreen).Fprintf(out, "Visualization %s ready\n", state.Result.ID)
	fmt.Fprintln(out, state.Result.GeneratedImageURL)
	return nil
}

func buildSession(ctx context.Context, c *client.Client, opts options) (session.State, error) {
	state := session.New().
		SetRoomType(vision.RoomType(opts.roomType)).
		SetDesignStyle(vision.DesignStyle(opts.designStyle)).
		SetProvider(vision.ParseProvider(opts.provider))

	if opts.room != "" {
		state = state.BeginUpload()
		img, err := roomImage(opts.room)
		if err != nil {
			return state, err
		}
		state = state.SetRoomImage(uuid.NewString(), img, opts.room).Reset()
	}

	for _, id := range splitList(opts.items) {
		item, err := c.Item(ctx, id)
		if err != nil {
			return state, fmt.Errorf("catalog item %s: %w", id, err)
		}
		state = state.AddItem(item)
	}
	for _, article := range splitList(opts.articles) {
		product, err := c.Lookup(ctx, article, "")
		if err != nil {
			return state, fmt.Errorf("article %s: %w", article, err)
		}
		state = state.AddItem(product.Item)
	}
	return state, nil
}

func roomImage(source string) (vision.RoomImage, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return vision.RoomImage{URL: source}, nil
	}
	return client.EncodeFile(source)
}

func listCatalog(ctx context.Context, c *client.Client, category string, out io.Writer) error {
	items, err := c.Catalog(ctx, category)
	if err != nil {
		return err
	}
	heading := color.New(color.Bold)
	heading.Fprintf(out, "%-16s %-28s %-14s %s\n", "ID", "NAME", "CATEGORY", "PRICE")
	for _, item := range items {
		fmt.Fprintf(out, "%-16s %-28s %-14s %.2f %s\n", item.ID, item.Name, item.Category, item.Price, item.Currency)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
