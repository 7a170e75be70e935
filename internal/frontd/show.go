package frontd

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/strongdm/frontconf/internal/frontend"
)

// Show prints the configuration a page would receive right now, resolved from
// the same flags and sources the server uses. args[0] is the command name.
func Show(args []string, out io.Writer) error {
	cfg, err := parseConfig(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	store := newStore(cfg, nil)
	b := (&frontend.Publisher{Config: store}).Bootstrap(nil)

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	_, err = fmt.Fprintln(out, strings.TrimSpace(string(data)))
	return err
}
