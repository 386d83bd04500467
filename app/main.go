package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/haqim007/story-app/app/cfg"
	"github.com/haqim007/story-app/app/database"
	"github.com/haqim007/story-app/app/prefs"
	"github.com/haqim007/story-app/app/remote"
	"github.com/haqim007/story-app/app/resource"
	"github.com/haqim007/story-app/app/story"
)

const usage = `Usage: story-app [options] <command>

Commands:
  register <name> <email> <password>   Create a new account
  login <email> <password>             Authenticate and store the session
  logout                               Clear the stored session
  whoami                               Show the stored account
  feed [more]                          Show the cached feed, refreshed from the service
  map                                  Show stories that carry a location
  add <photo> <description> [lon lat]  Upload a new story

Run with --help for options.`

func main() {
	appCfg, args, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg.Debug)

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(appCfg, args[0], args[1:]); err != nil {
		slog.Error("Command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(appCfg *cfg.Cfg, command string, args []string) error {
	ctx := context.Background()

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Database ready", "version", version, "dirty", dirty)

	users, err := prefs.Open(appCfg.PrefsPath)
	if err != nil {
		return fmt.Errorf("failed to open preference store: %w", err)
	}
	defer users.Close()

	client := remote.NewClient(appCfg.BaseURL, appCfg.UserAgent, users)
	local := story.NewLocalDataSource(db)
	repo := story.NewRepository(client, users, local, appCfg.PageSize)

	switch command {
	case "register":
		if len(args) != 3 {
			return fmt.Errorf("usage: register <name> <email> <password>")
		}
		return runRegister(ctx, repo, args[0], args[1], args[2])
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: login <email> <password>")
		}
		return runLogin(ctx, repo, args[0], args[1])
	case "logout":
		return repo.Logout()
	case "whoami":
		return runWhoami(repo)
	case "feed":
		return runFeed(ctx, repo, args)
	case "map":
		return runMap(ctx, repo, appCfg.PageSize)
	case "add":
		return runAdd(ctx, repo, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func runRegister(ctx context.Context, repo *story.Repository, name, email, password string) error {
	for state := range repo.Register(ctx, name, email, password) {
		switch state.Status {
		case resource.StatusLoading:
			slog.Info("Registering account", "email", email)
		case resource.StatusSuccess:
			fmt.Println(state.Data.Message)
			return nil
		case resource.StatusError:
			return fmt.Errorf("registration failed: %s", state.Message)
		}
	}
	return nil
}

func runLogin(ctx context.Context, repo *story.Repository, email, password string) error {
	for state := range repo.Login(ctx, email, password) {
		switch state.Status {
		case resource.StatusLoading:
			slog.Info("Logging in", "email", email)
		case resource.StatusSuccess:
			fmt.Printf("Logged in as %s\n", state.Data.Name)
			return nil
		case resource.StatusError:
			return fmt.Errorf("login failed: %s", state.Message)
		}
	}
	return nil
}

func runWhoami(repo *story.Repository) error {
	user, err := repo.GetUser()
	if err != nil {
		return err
	}
	if !user.HasLogin {
		fmt.Println("Not logged in")
		return nil
	}
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	return nil
}

// runFeed refreshes the paginated feed from the service and prints the
// loaded window. "feed more" appends the next page to the cached window.
func runFeed(ctx context.Context, repo *story.Repository, args []string) error {
	pager := repo.Pager()

	result, err := pager.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh feed: %w", err)
	}

	if len(args) > 0 && args[0] == "more" {
		result, err = pager.Append(ctx)
		if err != nil {
			return fmt.Errorf("failed to load more stories: %w", err)
		}
	}

	if len(result.Items) == 0 {
		fmt.Println("No stories yet")
		return nil
	}
	for _, item := range result.Items {
		printStory(item)
	}
	if result.EndOfPagination {
		fmt.Println("-- end of feed --")
	}
	return nil
}

// runMap prints the first consistent snapshot of located stories and exits.
// The underlying stream keeps following the local cache; the CLI only needs
// one frame of it.
func runMap(ctx context.Context, repo *story.Repository, pageSize int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for state := range repo.StoriesWithLocation(ctx, 1, pageSize) {
		switch state.Status {
		case resource.StatusLoading:
			slog.Info("Loading located stories")
		case resource.StatusSuccess:
			if len(state.Data) == 0 {
				fmt.Println("No stories with a location yet")
				return nil
			}
			for _, item := range state.Data {
				printStory(item)
			}
			return nil
		case resource.StatusError:
			return fmt.Errorf("failed to load stories: %s", state.Message)
		}
	}
	return nil
}

func runAdd(ctx context.Context, repo *story.Repository, args []string) error {
	if len(args) != 2 && len(args) != 4 {
		return fmt.Errorf("usage: add <photo> <description> [lon lat]")
	}

	photo, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open photo: %w", err)
	}
	defer photo.Close()

	req := remote.AddStoryRequest{
		Photo:       photo,
		Filename:    filepath.Base(args[0]),
		Description: args[1],
	}
	if len(args) == 4 {
		lon, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q", args[2])
		}
		lat, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q", args[3])
		}
		req.Lon = &lon
		req.Lat = &lat
	}

	for state := range repo.AddStory(ctx, req) {
		switch state.Status {
		case resource.StatusLoading:
			slog.Info("Uploading story", "photo", req.Filename)
		case resource.StatusSuccess:
			fmt.Println(state.Data.Message)
			return nil
		case resource.StatusError:
			return fmt.Errorf("upload failed: %s", state.Message)
		}
	}
	return nil
}

func printStory(item story.Story) {
	fmt.Printf("%s (%s)\n", item.Name, item.CreatedAt)
	fmt.Printf("  %s\n", item.Description)
	if item.Lon != nil && item.Lat != nil {
		fmt.Printf("  at %.4f, %.4f\n", *item.Lat, *item.Lon)
	}
}
