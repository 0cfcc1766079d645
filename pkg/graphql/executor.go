package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/shashiranjanraj/kashvi-crm/pkg/http"
)

// Request is one GraphQL operation.
type Request struct {
	Query         string                 `json:"query"         validate:"required"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

// Result is the JSON form of an execution result. Data is kept raw so local
// and remote executions decode the same way.
type Result struct {
	Data   json.RawMessage            `json:"data"`
	Errors []gqlerrors.FormattedError `json:"errors,omitempty"`
}

// Err joins the messages of Errors, or returns nil.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return errors.New("graphql: " + strings.Join(msgs, "; "))
}

// Decode unmarshals Data into dest.
func (r *Result) Decode(dest interface{}) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return errors.New("graphql: empty data")
	}
	if err := json.Unmarshal(r.Data, dest); err != nil {
		return fmt.Errorf("graphql: decode data: %w", err)
	}
	return nil
}

// Executor runs GraphQL operations. The error covers transport failures;
// GraphQL errors are reported in Result.Errors.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}

// ─── In-process ───────────────────────────────────────────────────────────────

// LocalClient executes against a schema in the same process.
type LocalClient struct {
	schema graphql.Schema
}

func NewLocalClient(schema graphql.Schema) *LocalClient {
	return &LocalClient{schema: schema}
}

func (c *LocalClient) Execute(ctx context.Context, req Request) (*Result, error) {
	return toResult(c.do(ctx, req))
}

func (c *LocalClient) do(ctx context.Context, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         c.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

func toResult(res *graphql.Result) (*Result, error) {
	data, err := json.Marshal(res.Data)
	if err != nil {
		return nil, fmt.Errorf("graphql: encode data: %w", err)
	}
	return &Result{Data: data, Errors: res.Errors}, nil
}

// ─── Over HTTP ────────────────────────────────────────────────────────────────

// RemoteClient posts operations to a GraphQL endpoint.
type RemoteClient struct {
	url       string
	token     string
	timeout   time.Duration
	attempts  int
	retryWait time.Duration
}

// RemoteOption configures a RemoteClient.
type RemoteOption func(*RemoteClient)

// WithToken sends token as a bearer credential.
func WithToken(token string) RemoteOption {
	return func(c *RemoteClient) { c.token = token }
}

// WithRetry sets total attempts and the initial backoff.
func WithRetry(attempts int, wait time.Duration) RemoteOption {
	return func(c *RemoteClient) { c.attempts, c.retryWait = attempts, wait }
}

func WithTimeout(d time.Duration) RemoteOption {
	return func(c *RemoteClient) { c.timeout = d }
}

func NewRemoteClient(url string, opts ...RemoteOption) *RemoteClient {
	c := &RemoteClient{url: url, timeout: 10 * time.Second, attempts: 3, retryWait: 500 * time.Millisecond}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RemoteClient) Execute(ctx context.Context, req Request) (*Result, error) {
	resp, err := http.Post(c.url).
		Body(req).
		Bearer(c.token).
		Timeout(c.timeout).
		Retry(c.attempts, c.retryWait).
		WithContext(ctx).
		Send()
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, err
	}

	var out Result
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
