package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hozondb/hozon-db/pkg/server"
)

func main() {
	host := flag.String("host", "localhost", "Server host address")
	port := flag.Int("port", 8080, "Server port")
	dbPath := flag.String("db", "./hozon.db", "Path to the database file")
	enableGraphQL := flag.Bool("graphql", false, "Enable GraphQL API endpoint (/graphql)")
	quiet := flag.Bool("quiet", false, "Disable request logging")
	users := flag.String("users", "", "Basic auth users as user:password pairs, comma separated")
	flag.Parse()

	config := server.DefaultConfig()
	config.Host = *host
	config.Port = *port
	config.DatabasePath = *dbPath
	config.EnableGraphQL = *enableGraphQL
	config.EnableLogging = !*quiet

	if *users != "" {
		config.Users = make(map[string]string)
		for _, pair := range strings.Split(*users, ",") {
			username, password, ok := strings.Cut(pair, ":")
			if !ok || username == "" {
				fmt.Fprintf(os.Stderr, "invalid -users entry %q, expected user:password\n", pair)
				os.Exit(1)
			}
			config.Users[username] = password
		}
	}

	srv, err := server.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create server: %v\n", err)
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
