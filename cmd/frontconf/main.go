package main

import (
	"fmt"
	"log"
	"os"

	"github.com/strongdm/frontconf/internal/appconfig"
	"github.com/strongdm/frontconf/internal/frontd"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"

	// Auth defaults compiled in with -ldflags "-X main.defaultClientID=...".
	defaultAPIURL          = ""
	defaultClientID        = ""
	defaultAuthority       = ""
	defaultRedirectURL     = ""
	defaultPostRedirectURL = ""
)

func main() {
	args := os.Args
	frontd.SetVersion(version)
	frontd.SetBuildDefaults(appconfig.AuthConfig{
		APIURL:          defaultAPIURL,
		ClientID:        defaultClientID,
		Authority:       defaultAuthority,
		RedirectURL:     defaultRedirectURL,
		PostRedirectURL: defaultPostRedirectURL,
	})

	if len(args) > 1 {
		switch args[1] {
		case "--version":
			printVersion()
			return
		case "show":
			showArgs := append([]string{args[0]}, args[2:]...)
			if err := frontd.Show(showArgs, os.Stdout); err != nil {
				log.Fatal(err)
			}
			return
		}
	}

	if err := frontd.Main(args); err != nil {
		log.Fatal(err)
	}
}

func printVersion() {
	shortHash := commit
	if len(shortHash) > 7 {
		shortHash = shortHash[:7]
	}
	fmt.Printf("version: %s\n", version)
	fmt.Printf("git hash: %s\n", shortHash)
	fmt.Printf("build date: %s\n", buildDate)
}
