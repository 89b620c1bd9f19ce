package provision

import (
	stdErrors "errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// WriteEnv merges updates into the dotenv file at path, creating it when
// missing.
func WriteEnv(path string, updates map[string]string) error {
	env, err := godotenv.Read(path)
	if err != nil && !stdErrors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "read %s", path)
	}
	if env == nil {
		env = map[string]string{}
	}
	for key, value := range updates {
		env[key] = value
	}
	return errors.Wrapf(godotenv.Write(env, path), "write %s", path)
}
