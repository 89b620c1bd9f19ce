// Package provision creates and seeds the hosted database the gateway
// talks to.
package provision

import (
	"bytes"
	"context"
	_ "embed"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"

	f "github.com/fauna/faunadb-go/v4/faunadb"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	domainErr "github.com/Tanmoy095/authgate/internal/domain/errors"
)

// FaunaSchema is the GraphQL schema imported into a new database.
//
//go:embed faunaSchema.graphql
var FaunaSchema []byte

// Reporter receives progress as each step completes.
type Reporter interface {
	Step(title string)
	Created(subject string)
	Skipped(subject string)
	Updated(subject string)
	Deleted(subject string)
}

// Config configures a Provisioner.
type Config struct {
	AdminKey       string
	DatabaseName   string
	FaunaEndpoint  string
	ImportEndpoint string
	HTTPClient     *http.Client
	Reporter       Reporter
	Logger         *zap.Logger
}

// Provisioner creates the application database: schema, functions, roles
// and the public key the gateway runs with.
type Provisioner struct {
	admin          *f.FaunaClient
	http           *http.Client
	importEndpoint string
	db             string
	report         Reporter
	log            *zap.Logger
}

func New(cfg Config) *Provisioner {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Provisioner{
		admin:          f.NewFaunaClient(cfg.AdminKey, f.Endpoint(cfg.FaunaEndpoint), f.HTTP(httpClient)),
		http:           httpClient,
		importEndpoint: cfg.ImportEndpoint,
		db:             cfg.DatabaseName,
		report:         cfg.Reporter,
		log:            log,
	}
}

// CreateDatabase runs every provisioning step and returns the secret of the
// new public key. Steps that find their object already present are skipped.
// The temporary admin key is deleted on every exit path once created.
func (p *Provisioner) CreateDatabase(ctx context.Context) (publicKey string, err error) {
	p.report.Step(fmt.Sprintf("1) Create database %q", p.db))
	if err := p.create(ctx, p.admin, fmt.Sprintf("Database %q", p.db),
		f.CreateDatabase(f.Obj{"name": p.db})); err != nil {
		return "", err
	}

	p.report.Step("2) Create temporary key")
	tempName := "temp admin key for " + p.db
	tempKey, err := p.createSecret(ctx, p.admin, fmt.Sprintf("Key %q", tempName), f.CreateKey(f.Obj{
		"name":     tempName,
		"database": f.Database(p.db),
		"role":     "admin",
	}))
	if err != nil {
		return "", err
	}
	defer func() {
		if delErr := p.deleteKey(tempKey); delErr != nil {
			p.log.Error("delete temporary key", zap.String("key", tempName), zap.Error(delErr))
			if err == nil {
				err = delErr
			}
			return
		}
		p.report.Deleted(fmt.Sprintf("Key %q", tempName))
	}()
	app := p.admin.NewSessionClient(tempKey)

	p.report.Step("3) Upload GraphQL schema")
	if err := p.ImportSchema(ctx, tempKey, FaunaSchema); err != nil {
		return "", err
	}
	p.report.Updated("GraphQL schema imported")

	p.report.Step("4) Update generated user defined functions")
	for _, fn := range functionBodies() {
		if err := p.update(ctx, app, fmt.Sprintf("Function %q", fn.name),
			f.Update(f.Function(fn.name), f.Obj{"body": fn.body})); err != nil {
			return "", err
		}
	}

	p.report.Step("5) Create custom roles")
	if err := p.create(ctx, app, `Role "public"`, f.CreateRole(publicRole())); err != nil {
		return "", err
	}
	publicName := "Public key for " + p.db
	publicKey, err = p.createSecret(ctx, app, fmt.Sprintf("Key %q", publicName), f.CreateKey(f.Obj{
		"name": publicName,
		"role": f.Role("public"),
	}))
	if err != nil {
		return "", err
	}
	if err := p.create(ctx, app, `Role "user"`, f.CreateRole(userRole())); err != nil {
		return "", err
	}
	return publicKey, nil
}

// ImportSchema uploads schema to the GraphQL import endpoint.
func (p *Provisioner) ImportSchema(ctx context.Context, secret string, schema []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.importEndpoint, bytes.NewReader(schema))
	if err != nil {
		return errors.Wrap(err, "build import request")
	}
	req.Header.Set("Authorization", "Bearer "+secret)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := p.http.Do(req)
	if err != nil {
		return errors.Wrapf(domainErr.ErrBackendUnavailable, "import schema: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &PermissionError{Err: errors.Errorf("import schema: %s", bytes.TrimSpace(body))}
	case resp.StatusCode >= http.StatusMultipleChoices:
		return errors.Errorf("import schema: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}

func (p *Provisioner) create(ctx context.Context, c *f.FaunaClient, subject string, expr f.Expr) error {
	_, err := p.query(ctx, c, subject, expr)
	if stdErrors.Is(err, domainErr.ErrAlreadyExists) {
		p.report.Skipped(subject)
		return nil
	}
	if err != nil {
		return err
	}
	p.report.Created(subject)
	return nil
}

func (p *Provisioner) createSecret(ctx context.Context, c *f.FaunaClient, subject string, expr f.Expr) (string, error) {
	res, err := p.query(ctx, c, subject, expr)
	if err != nil {
		return "", err
	}
	var secret string
	if err := res.At(f.ObjKey("secret")).Get(&secret); err != nil {
		return "", errors.Wrapf(err, "%s: read secret", subject)
	}
	p.report.Created(subject)
	return secret, nil
}

func (p *Provisioner) update(ctx context.Context, c *f.FaunaClient, subject string, expr f.Expr) error {
	if _, err := p.query(ctx, c, subject, expr); err != nil {
		return err
	}
	p.report.Updated(subject)
	return nil
}

func (p *Provisioner) query(ctx context.Context, c *f.FaunaClient, subject string, expr f.Expr) (f.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := c.Query(expr)
	if err != nil {
		mapped := mapFaunaError(err, subject)
		if !stdErrors.Is(mapped, domainErr.ErrAlreadyExists) {
			p.log.Error("provisioning step failed", zap.String("step", subject), zap.Error(err))
		}
		return nil, mapped
	}
	return res, nil
}

// deleteKey runs after the caller may have given up, so it ignores ctx.
func (p *Provisioner) deleteKey(secret string) error {
	_, err := p.admin.Query(f.Delete(f.Select("ref", f.KeyFromSecret(secret))))
	return mapFaunaError(err, "delete temporary key")
}
