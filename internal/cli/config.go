package cli

import (
	"fmt"

	"github.com/babarot/rmt/internal/config"
)

func (c *CLI) ConfigGet() error {
	key := config.Key(c.option.Config.Get.Key)
	value, err := c.config.Get(key)
	if err != nil {
		return err
	}
	switch key {
	case config.KeyTrashDir:
		fmt.Fprintf(c.stdout, "Trash directory: %s\n", value)
	case config.KeyGracePeriod:
		fmt.Fprintf(c.stdout, "Grace period in days: %s\n", value)
	}
	return nil
}

func (c *CLI) ConfigSet() error {
	key := config.Key(c.option.Config.Set.Key)
	value, err := c.config.Set(key, c.option.Config.Set.Value)
	if err != nil {
		return err
	}
	switch key {
	case config.KeyTrashDir:
		fmt.Fprintf(c.stdout, "Set trash directory to %s\n", value)
	case config.KeyGracePeriod:
		fmt.Fprintf(c.stdout, "Set grace period in days to %s\n", value)
	}
	return nil
}
