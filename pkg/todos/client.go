// Package todos is a client for the gateway's todo API. It keeps the
// session cookie in a cookie jar and caches the logged-in flag and the
// current user's todos the way the web frontend does.
package todos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/Tanmoy095/authgate/client"
	"github.com/Tanmoy095/authgate/internal/session"
	"github.com/Tanmoy095/authgate/shared/contracts"
)

const (
	keyLoggedIn = "loggedIn"
	keyMe       = "me"
)

// Client calls the gateway's GraphQL endpoint.
type Client struct {
	endpoint *url.URL
	jar      http.CookieJar
	gql      *client.GraphQLClient
	cache    *lru.Cache[string, any]
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	token      string
}

// WithHTTPClient uses httpClient for every call. Its cookie jar is replaced.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) { o.httpClient = httpClient }
}

// WithSessionToken resumes a session saved by SessionToken.
func WithSessionToken(token string) Option {
	return func(o *options) { o.token = token }
}

func NewClient(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid gateway endpoint %q", endpoint)
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "error creating cookie jar")
	}
	if o.token != "" {
		jar.SetCookies(u, []*http.Cookie{{Name: session.CookieName, Value: o.token}})
	}

	httpClient := &http.Client{}
	if o.httpClient != nil {
		copied := *o.httpClient
		httpClient = &copied
	}
	httpClient.Jar = jar

	cache, err := lru.New[string, any](16)
	if err != nil {
		return nil, errors.Wrap(err, "error creating cache")
	}
	return &Client{
		endpoint: u,
		jar:      jar,
		gql:      client.NewGraphQLClient(endpoint, httpClient),
		cache:    cache,
	}, nil
}

// SessionToken returns the session cookie currently held, or "".
func (c *Client) SessionToken() string {
	for _, ck := range c.jar.Cookies(c.endpoint) {
		if ck.Name == session.CookieName {
			return ck.Value
		}
	}
	return ""
}

// LoggedIn reports whether the held session is valid.
func (c *Client) LoggedIn(ctx context.Context) (bool, error) {
	if v, ok := c.cache.Get(keyLoggedIn); ok {
		return v.(bool), nil
	}
	var out struct {
		LoggedIn bool `json:"loggedIn"`
	}
	if err := c.do(ctx, "GetLoggedIn", GetLoggedInQuery, nil, &out); err != nil {
		return false, err
	}
	c.cache.Add(keyLoggedIn, out.LoggedIn)
	return out.LoggedIn, nil
}

// Me returns the logged-in user with their todos.
func (c *Client) Me(ctx context.Context) (*contracts.User, error) {
	if v, ok := c.cache.Get(keyMe); ok {
		return cloneUser(v.(*contracts.User)), nil
	}
	var out struct {
		Me *contracts.User `json:"me"`
	}
	if err := c.do(ctx, "GetMyTodos", GetMyTodosQuery, nil, &out); err != nil {
		return nil, err
	}
	if out.Me == nil {
		return nil, errors.New("gateway returned no user")
	}
	c.cache.Add(keyMe, out.Me)
	return cloneUser(out.Me), nil
}

// Login exchanges credentials for a session cookie.
func (c *Client) Login(ctx context.Context, email, password string) (bool, error) {
	var out struct {
		Login bool `json:"login"`
	}
	vars := map[string]any{"data": contracts.LoginInput{Email: email, Password: password}}
	if err := c.do(ctx, "Login", LoginMutation, vars, &out); err != nil {
		return false, err
	}
	c.cache.Add(keyLoggedIn, out.Login)
	return out.Login, nil
}

// Logout ends the session and drops everything cached.
func (c *Client) Logout(ctx context.Context) (bool, error) {
	var out struct {
		Logout bool `json:"logout"`
	}
	err := c.do(ctx, "Logout", LogoutMutation, nil, &out)
	c.cache.Purge()
	if err != nil {
		return false, err
	}
	return out.Logout, nil
}

// CreateTodo adds a todo owned by the logged-in user.
func (c *Client) CreateTodo(ctx context.Context, title string) (*contracts.Todo, error) {
	var out struct {
		Todo *contracts.Todo `json:"userCreateTodo"`
	}
	vars := map[string]any{"data": contracts.UserTodoInput{Title: title}}
	if err := c.do(ctx, "UserCreateTodo", UserCreateTodoMutation, vars, &out); err != nil {
		return nil, err
	}
	if out.Todo == nil {
		return nil, errors.New("gateway returned no todo")
	}
	c.updateMe(func(me *contracts.User) {
		me.Todos.Data = append(me.Todos.Data, *out.Todo)
	})
	return out.Todo, nil
}

// UpdateTodo replaces a todo's title and completion flag.
func (c *Client) UpdateTodo(ctx context.Context, id string, data contracts.TodoInput) (*contracts.Todo, error) {
	var out struct {
		Todo *contracts.Todo `json:"updateTodo"`
	}
	vars := map[string]any{"id": id, "data": data}
	if err := c.do(ctx, "UpdateTodo", UpdateTodoMutation, vars, &out); err != nil {
		return nil, err
	}
	if out.Todo == nil {
		return nil, errors.Errorf("todo %s not found", id)
	}
	c.updateMe(func(me *contracts.User) {
		for i := range me.Todos.Data {
			if me.Todos.Data[i].ID == out.Todo.ID {
				me.Todos.Data[i] = *out.Todo
			}
		}
	})
	return out.Todo, nil
}

// DeleteTodo removes a todo and returns its id.
func (c *Client) DeleteTodo(ctx context.Context, id string) (string, error) {
	var out struct {
		Todo *struct {
			ID string `json:"_id"`
		} `json:"deleteTodo"`
	}
	if err := c.do(ctx, "DeleteTodo", DeleteTodoMutation, map[string]any{"id": id}, &out); err != nil {
		return "", err
	}
	if out.Todo == nil {
		return "", errors.Errorf("todo %s not found", id)
	}
	deleted := out.Todo.ID
	c.updateMe(func(me *contracts.User) {
		kept := me.Todos.Data[:0]
		for _, todo := range me.Todos.Data {
			if todo.ID != deleted {
				kept = append(kept, todo)
			}
		}
		me.Todos.Data = kept
	})
	return deleted, nil
}

// updateMe applies fn to a copy of the cached user, if any.
func (c *Client) updateMe(fn func(me *contracts.User)) {
	v, ok := c.cache.Get(keyMe)
	if !ok {
		return
	}
	me := cloneUser(v.(*contracts.User))
	if me.Todos == nil {
		me.Todos = &contracts.TodoPage{}
	}
	fn(me)
	c.cache.Add(keyMe, me)
}

func (c *Client) do(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	resp, err := c.gql.Do(ctx, "", client.Request{Query: query, OperationName: operation, Variables: vars})
	if err != nil {
		return errors.Wrapf(err, "%s", operation)
	}
	if len(resp.Errors) > 0 {
		return errors.Wrapf(&client.RemoteError{Errors: resp.Errors}, "%s", operation)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return errors.Wrapf(err, "%s: error decoding response", operation)
	}
	return nil
}

func cloneUser(u *contracts.User) *contracts.User {
	out := *u
	if u.Todos != nil {
		page := *u.Todos
		page.Data = append([]contracts.Todo(nil), u.Todos.Data...)
		out.Todos = &page
	}
	return &out
}
