package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/c360/ringcast/config"
)

// readSizing fills in capacity and then reader count from r, in that order,
// for whichever of them is still unset.
func readSizing(r io.Reader, prompt io.Writer, cfg *config.Config) error {
	if !cfg.NeedsSizing() {
		return nil
	}

	in := bufio.NewReader(r)
	if cfg.Capacity == config.Unset {
		_, _ = fmt.Fprint(prompt, "Ring capacity: ")
		if _, err := fmt.Fscan(in, &cfg.Capacity); err != nil {
			return fmt.Errorf("read capacity from stdin: %w", err)
		}
	}
	if cfg.Readers == config.Unset {
		_, _ = fmt.Fprint(prompt, "Reader count: ")
		if _, err := fmt.Fscan(in, &cfg.Readers); err != nil {
			return fmt.Errorf("read reader count from stdin: %w", err)
		}
	}
	return nil
}
