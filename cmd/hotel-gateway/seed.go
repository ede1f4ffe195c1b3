// ABOUTME: Seed subcommand: loads rooms and guests from a YAML manifest
// ABOUTME: Existing rows are skipped so re-running a manifest is safe

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/gahenax/hotel-gateway/internal/auth"
	"github.com/gahenax/hotel-gateway/internal/config"
	"github.com/gahenax/hotel-gateway/internal/store"
)

// seedManifest is the YAML shape accepted by the seed subcommand.
type seedManifest struct {
	Rooms []struct {
		Slug         string   `yaml:"slug"`
		Name         string   `yaml:"name"`
		Floor        int      `yaml:"floor"`
		Type         string   `yaml:"type"`
		Tagline      string   `yaml:"tagline"`
		DescShort    string   `yaml:"desc_short"`
		DescLong     string   `yaml:"desc_long"`
		Tags         []string `yaml:"tags"`
		AllowedPlans []string `yaml:"allowed_plans"`
		WebURL       string   `yaml:"web_url"`
		Status       string   `yaml:"status"`
	} `yaml:"rooms"`
	Guests []struct {
		Email  string `yaml:"email"`
		Name   string `yaml:"name"`
		Role   string `yaml:"role"`
		Secret string `yaml:"secret"`
	} `yaml:"guests"`
}

func runSeed(ctx context.Context) error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: hotel-gateway seed <manifest.yaml>")
	}
	manifestPath := os.Args[2]

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	var manifest seedManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)

	var created, skipped int

	for _, r := range manifest.Rooms {
		if r.Slug == "" || r.Name == "" {
			return fmt.Errorf("room entries need slug and name")
		}
		room := &store.Room{
			Slug:         r.Slug,
			Name:         r.Name,
			Floor:        r.Floor,
			Type:         r.Type,
			Tagline:      r.Tagline,
			DescShort:    r.DescShort,
			DescLong:     r.DescLong,
			Tags:         r.Tags,
			AllowedPlans: r.AllowedPlans,
			WebURL:       r.WebURL,
			Status:       r.Status,
		}
		err := s.CreateRoom(ctx, room)
		if errors.Is(err, store.ErrDuplicateRoom) {
			gray.Printf("  - room %s already exists, skipped\n", r.Slug)
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("creating room %s: %w", r.Slug, err)
		}
		green.Printf("  ✓ room %s\n", r.Slug)
		created++
	}

	for _, g := range manifest.Guests {
		if g.Email == "" || g.Name == "" || g.Secret == "" {
			return fmt.Errorf("guest entries need email, name and secret")
		}
		hash, err := auth.HashSecret(g.Secret)
		if err != nil {
			return fmt.Errorf("hashing secret for %s: %w", g.Email, err)
		}
		role := g.Role
		if role == "" {
			role = store.RoleCustomer
		}
		guest := &store.Guest{
			Email:        g.Email,
			Name:         g.Name,
			Role:         role,
			PasswordHash: hash,
		}
		err = s.CreateGuest(ctx, guest)
		if errors.Is(err, store.ErrDuplicateGuest) {
			gray.Printf("  - guest %s already exists, skipped\n", g.Email)
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("creating guest %s: %w", g.Email, err)
		}
		green.Printf("  ✓ guest %s (%s)\n", g.Email, guest.Role)
		created++
	}

	fmt.Printf("\nSeed complete: %d created, %d skipped\n", created, skipped)
	return nil
}
