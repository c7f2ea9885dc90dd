package command

import (
	"encoding/hex"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/shmap-go/pkg/keygen"
)

type keyView struct {
	Key         string `json:"key" yaml:"key"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
}

// KeygenCommand returns the keygen command.
func KeygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "Generate an encryption key for security.encryption_key",
		Action: func(c *cli.Context) error {
			key, err := keygen.Generate()
			if err != nil {
				return err
			}
			return render(c, keyView{
				Key:         hex.EncodeToString(key),
				Fingerprint: keygen.Fingerprint(key),
			})
		},
	}
}
