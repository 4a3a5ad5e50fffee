package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"teemail/pkg/config"
	"teemail/pkg/session"
)

// sessiontoken mints a dashboard session token for local testing.
func main() {
	var (
		user = flag.String("user", "dev", "username to embed")
		club = flag.String("club", "", "club partition key (required)")
		ttl  = flag.Duration("ttl", 12*time.Hour, "token lifetime")
	)
	flag.Parse()

	if *club == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	tok, err := session.Sign(*user, *club, cfg.DashboardSessionSecret, *ttl, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
