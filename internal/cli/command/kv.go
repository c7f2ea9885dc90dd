package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/shmap-go/internal/cli/output"
	"github.com/yndnr/shmap-go/pkg/shmap"
)

// ErrKeyNotFound is returned by get and ttl for absent or expired keys.
var ErrKeyNotFound = errors.New("key not found")

// commandTimeout bounds lock waits of a single command.
const commandTimeout = 30 * time.Second

// entryView is the rendered form of a stored value.
type entryView struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// setView is the rendered result of set.
type setView struct {
	Key       string     `json:"key" yaml:"key"`
	Bytes     int        `json:"bytes" yaml:"bytes"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// ttlView is the rendered result of ttl.
type ttlView struct {
	Key       string     `json:"key" yaml:"key"`
	Expires   bool       `json:"expires" yaml:"expires"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	TTL       string     `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	Encrypted bool       `json:"encrypted" yaml:"encrypted"`
}

var rawFlag = &cli.BoolFlag{
	Name:  "raw",
	Usage: "Store or read the value bytes as is instead of a codec encoded string",
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print the value of a key",
		ArgsUsage: "KEY",
		Flags:     []cli.Flag{rawFlag},
		Action:    getAction,
	}
}

func getAction(c *cli.Context) error {
	if err := requireArgs(c, 1, "KEY"); err != nil {
		return err
	}
	key := c.Args().First()

	store, err := openStore(c, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, commandTimeout)
	defer cancel()

	var (
		value string
		found bool
	)
	if c.Bool("raw") {
		var data []byte
		data, found, err = store.GetRaw(ctx, key)
		value = string(data)
	} else {
		found, err = store.Get(ctx, key, &value)
	}
	switch {
	case errors.Is(err, shmap.ErrCodecDecode):
		return fmt.Errorf("%w (was it written with --raw or another codec?)", err)
	case err != nil:
		return err
	case !found:
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}

	if tableOutput(c) {
		_, err := fmt.Fprintln(c.App.Writer, value)
		return err
	}
	return render(c, entryView{Key: key, Value: value})
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a value; VALUE - reads it from stdin",
		ArgsUsage: "KEY VALUE | --generate-key VALUE",
		Flags: []cli.Flag{
			rawFlag,
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "Expire the key after this duration (0 never expires)",
			},
			&cli.BoolFlag{
				Name:    "generate-key",
				Aliases: []string{"g"},
				Usage:   "Store under a new ULID key and print it",
			},
		},
		Action: setAction,
	}
}

func setAction(c *cli.Context) error {
	var key, value string
	if c.Bool("generate-key") {
		if err := requireArgs(c, 1, "--generate-key VALUE"); err != nil {
			return err
		}
		key = ulid.Make().String()
		value = c.Args().Get(0)
	} else {
		if err := requireArgs(c, 2, "KEY VALUE"); err != nil {
			return err
		}
		key = c.Args().Get(0)
		value = c.Args().Get(1)
	}

	if value == "-" {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		value = string(data)
	}

	ttl := c.Duration("ttl")
	if ttl < 0 {
		return fmt.Errorf("--ttl must not be negative")
	}

	store, err := openStore(c, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, commandTimeout)
	defer cancel()

	raw := c.Bool("raw")
	switch {
	case raw && ttl > 0:
		err = store.InsertRawWithTTL(ctx, key, []byte(value), ttl)
	case raw:
		err = store.InsertRaw(ctx, key, []byte(value))
	case ttl > 0:
		err = store.InsertWithTTL(ctx, key, value, ttl)
	default:
		err = store.Insert(ctx, key, value)
	}
	if err != nil {
		return err
	}

	view := setView{Key: key, Bytes: len(value)}
	if ttl > 0 {
		exp := time.Now().Add(ttl).UTC()
		view.ExpiresAt = &exp
	}
	if tableOutput(c) {
		if c.Bool("generate-key") {
			_, err := fmt.Fprintln(c.App.Writer, key)
			return err
		}
		return nil
	}
	return render(c, view)
}

// DelCommand returns the del command.
func DelCommand() *cli.Command {
	return &cli.Command{
		Name:      "del",
		Aliases:   []string{"rm"},
		Usage:     "Remove keys; absent keys are ignored",
		ArgsUsage: "KEY [KEY...]",
		Action:    delAction,
	}
}

func delAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: del KEY [KEY...]")
	}

	store, err := openStore(c, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, commandTimeout)
	defer cancel()

	for _, key := range c.Args().Slice() {
		if err := store.Remove(ctx, key); err != nil {
			return fmt.Errorf("remove %q: %w", key, err)
		}
	}
	return nil
}

// KeysCommand returns the keys command.
func KeysCommand() *cli.Command {
	return &cli.Command{
		Name:   "keys",
		Usage:  "List live keys, removing expired ones",
		Action: keysAction,
	}
}

func keysAction(c *cli.Context) error {
	store, err := openStore(c, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, commandTimeout)
	defer cancel()

	keys, err := store.Keys(ctx)
	if err != nil {
		return err
	}

	if tableOutput(c) {
		table := &output.Table{Headers: []string{"KEY"}}
		for _, k := range keys {
			table.AddRow(k)
		}
		return render(c, table)
	}
	if keys == nil {
		keys = []string{}
	}
	return render(c, keys)
}

// TTLCommand returns the ttl command.
func TTLCommand() *cli.Command {
	return &cli.Command{
		Name:      "ttl",
		Usage:     "Show the remaining lifetime of a key",
		ArgsUsage: "KEY",
		Action:    ttlAction,
	}
}

func ttlAction(c *cli.Context) error {
	if err := requireArgs(c, 1, "KEY"); err != nil {
		return err
	}
	key := c.Args().First()

	store, err := openStore(c, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, commandTimeout)
	defer cancel()

	meta, found, err := store.Metadata(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}

	view := ttlView{Key: key, Encrypted: meta.Encrypted}
	if left, ok := meta.TTL(time.Now()); ok {
		exp, _ := meta.Expiration()
		exp = exp.UTC()
		view.Expires = true
		view.ExpiresAt = &exp
		view.TTL = left.Round(time.Millisecond).String()
	}

	if tableOutput(c) {
		ttl := view.TTL
		if !view.Expires {
			ttl = "none"
		}
		_, err := fmt.Fprintln(c.App.Writer, ttl)
		return err
	}
	return render(c, view)
}
