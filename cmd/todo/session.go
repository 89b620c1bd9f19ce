package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Tanmoy095/authgate/pkg/todos"
)

type savedSession struct {
	Server string `json:"server"`
	Token  string `json:"token"`
}

func sessionFile() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}
	return filepath.Join(home, ".authgate", "session"), nil
}

// loadSession returns the token saved for server, or "".
func loadSession(server string) (string, error) {
	path, err := sessionFile()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "error reading session file at %s", path)
	}
	s := savedSession{}
	if err := json.Unmarshal(b, &s); err != nil {
		return "", errors.Wrapf(err, "error parsing session file at %s", path)
	}
	if s.Server != server {
		return "", nil
	}
	return s.Token, nil
}

// saveSession persists token for server; an empty token removes the file.
func saveSession(server, token string) error {
	path, err := sessionFile()
	if err != nil {
		return err
	}
	if token == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "error deleting session")
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrapf(err, "error creating %s", filepath.Dir(path))
	}
	b, err := json.Marshal(savedSession{Server: server, Token: token})
	if err != nil {
		return errors.Wrap(err, "error marshaling session")
	}
	return errors.Wrapf(os.WriteFile(path, b, 0o600), "error writing to %s", path)
}

// withClient runs fn with a client resuming the saved session, then saves
// whatever session the client holds afterwards.
func withClient(c *cli.Context, fn func(*todos.Client) error) error {
	server := c.String(flagServer)
	token, err := loadSession(server)
	if err != nil {
		return err
	}
	client, err := todos.NewClient(server, todos.WithSessionToken(token))
	if err != nil {
		return err
	}
	runErr := fn(client)
	if err := saveSession(server, client.SessionToken()); err != nil {
		return err
	}
	return runErr
}
