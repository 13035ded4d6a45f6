// ABOUTME: Configuration checker for babel-gateway deployments
// ABOUTME: Prints a colored report of required and optional settings

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/2389/babel-gateway/internal/config"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow)
	gray   = color.New(color.FgHiBlack)
	bold   = color.New(color.Bold)
)

func main() {
	path := "babel.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	} else if envPath := os.Getenv("BABEL_CONFIG"); envPath != "" {
		path = envPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		red.Fprintf(os.Stderr, "✗ cannot read %s: %v\n", path, err)
		os.Exit(1)
	}

	cfg, err := config.Parse(data)
	if err != nil {
		red.Fprintf(os.Stderr, "✗ cannot parse %s: %v\n", path, err)
		os.Exit(1)
	}

	bold.Printf("Checking %s\n\n", path)

	ok := true

	bold.Println("Orchestrator (required)")
	ok = report("orchestrate.base_url", cfg.Orchestrate.BaseURL, true) && ok
	ok = report("orchestrate.agent_id", cfg.Orchestrate.AgentID, true) && ok
	ok = report("orchestrate.api_key", cfg.Orchestrate.APIKey, true) && ok
	report("orchestrate.token_url", cfg.Orchestrate.TokenURL, false)
	fmt.Println()

	bold.Println("Server")
	report("server.http_addr", cfg.Server.HTTPAddr, false)
	fmt.Println()

	bold.Println("Channel authentication")
	if cfg.Channel.JWTSecret == "" {
		yellow.Println("  ! inbound verification disabled (no channel.jwt_secret)")
	} else {
		report("channel.jwt_secret", cfg.Channel.JWTSecret, false)
		report("channel.app_id", cfg.Channel.AppID, false)
	}
	fmt.Println()

	bold.Println("Language control")
	if !cfg.Generation.Enabled() {
		gray.Println("  - disabled (set generation.api_key and generation.project_id)")
	} else {
		report("generation.url", cfg.Generation.URL, false)
		ok = report("generation.api_key", cfg.Generation.APIKey, true) && ok
		ok = report("generation.project_id", cfg.Generation.ProjectID, true) && ok
		report("generation.model_id", cfg.Generation.ModelID, false)
	}
	fmt.Println()

	bold.Println("Profile lookup")
	if !cfg.Profile.Enabled() {
		gray.Println("  - disabled (set profile.base_url and profile.client_secret)")
	} else {
		report("profile.base_url", cfg.Profile.BaseURL, false)
		report("profile.client_secret", cfg.Profile.ClientSecret, false)
	}
	fmt.Println()

	bold.Println("Sessions")
	report("sessions.backend", cfg.Sessions.Backend, false)
	if cfg.Sessions.Backend == "sqlite" {
		ok = report("sessions.path", cfg.Sessions.Path, true) && ok
	}
	gray.Printf("  thread_ttl=%s profile_ttl=%s\n", cfg.Sessions.ThreadTTL, cfg.Sessions.ProfileTTL)
	fmt.Println()

	if !ok {
		red.Println("✗ configuration is incomplete")
		os.Exit(1)
	}
	green.Println("✓ configuration looks good")
}

// report prints one setting line and returns false when a required value is
// missing. Secret-looking values are masked.
func report(name, value string, required bool) bool {
	if value == "" {
		if required {
			red.Printf("  ✗ %s is missing\n", name)
			return false
		}
		gray.Printf("  - %s not set\n", name)
		return true
	}

	green.Printf("  ✓ %s", name)
	if isSecret(name) {
		gray.Printf(" = %s\n", mask(value))
	} else {
		gray.Printf(" = %s\n", value)
	}
	return true
}

func isSecret(name string) bool {
	switch name {
	case "orchestrate.api_key", "generation.api_key", "channel.jwt_secret", "profile.client_secret":
		return true
	}
	return false
}

func mask(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return value[:4] + "****"
}
