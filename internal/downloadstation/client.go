// Package downloadstation implements a typed client for the Synology
// Download Station (DownloadStation2) web API.
//
// Every call is a POST to /webapi/entry.cgi carrying form or multipart
// parameters and returning the uniform {success, data, error} envelope.
// Authenticated calls attach the session id issued at login; when the
// server reports the session-expired error code the client logs in
// again and resends the original request exactly once.
package downloadstation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	apiPath = "/webapi/entry.cgi"

	taskAPI         = "SYNO.DownloadStation2.Task"
	taskVersion     = "2"
	authAPI         = "SYNO.API.Auth"
	authVersion     = "7"
	completeAPI     = "SYNO.DownloadStation2.Task.Complete"
	completeVersion = "1"

	sessionName     = "DownloadStation"
	torrentMIMEType = "application/x-bittorrent"

	// sessionExpiredCode is the envelope error code that signals the
	// session id is no longer valid. It is the sole trigger for
	// automatic re-authentication and lives in a different namespace
	// than TaskStatus 119 (ErrorExtractWrongPassword).
	sessionExpiredCode = 119

	defaultTimeout = 30 * time.Second
)

// Config holds client construction parameters. Validated once by New
// and immutable afterwards.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client talks to one Download Station instance. Safe for concurrent
// use; the session id is the only mutable state and is guarded by a
// read-write lock.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     zerolog.Logger

	mu  sync.RWMutex
	sid string
}

// New creates a Client from cfg. It returns a *ConfigurationError when
// username, password or base URL is empty or the base URL lacks an
// http:// or https:// scheme. No network I/O happens here.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.Username == "" {
		return nil, &ConfigurationError{Msg: "username cannot be empty"}
	}
	if cfg.Password == "" {
		return nil, &ConfigurationError{Msg: "password cannot be empty"}
	}
	if cfg.BaseURL == "" {
		return nil, &ConfigurationError{Msg: "base URL cannot be empty"}
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("base URL must start with http:// or https://, got: %s", cfg.BaseURL)}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "downloadstation").Logger(),
	}, nil
}

func (c *Client) sessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sid
}

func (c *Client) setSessionID(sid string) {
	c.mu.Lock()
	c.sid = sid
	c.mu.Unlock()
}

// Authorized reports whether a session id is currently held. It does
// not verify the session with the server; expiry is only discovered
// through the session-expired error code on a later call.
func (c *Client) Authorized() bool {
	return c.sessionID() != ""
}

// Authenticate logs in with the stored credentials and stores the
// issued session id, replacing any previous one.
func (c *Client) Authenticate(ctx context.Context) error {
	params := url.Values{}
	params.Set("api", authAPI)
	params.Set("version", authVersion)
	params.Set("method", "login")
	params.Set("account", c.username)
	params.Set("passwd", c.password)
	params.Set("session", sessionName)
	params.Set("format", "sid")

	// The login request never carries a session id.
	env, err := postForm[authData](ctx, c, params, false)
	if err != nil {
		return err
	}

	if !env.Success {
		if env.Error != nil {
			return &AuthenticationError{Code: env.Error.Code, Msg: "login rejected"}
		}
		return &AuthenticationError{Msg: "login rejected"}
	}
	if env.Data == nil || env.Data.SID == "" {
		return &InvalidResponseError{Msg: "no session id in login response"}
	}

	c.setSessionID(env.Data.SID)
	c.logger.Debug().Msg("session established")
	return nil
}

// GetTasks lists all download tasks with transfer and detail info.
func (c *Client) GetTasks(ctx context.Context) (*Tasks, error) {
	params := url.Values{}
	params.Set("method", "list")
	params.Set("additional", `["transfer","detail"]`)

	env, err := exec[Tasks](ctx, c, params)
	if err != nil {
		return nil, err
	}
	return dataOrError(env, "get tasks", nil)
}

// GetTask fetches detailed information for the given task ids.
func (c *Client) GetTask(ctx context.Context, ids ...string) (*TaskInfo, error) {
	if len(ids) == 0 {
		return nil, &InvalidInputError{Msg: "task ids cannot be empty"}
	}
	for _, id := range ids {
		if id == "" {
			return nil, &InvalidInputError{Msg: "task id cannot be empty"}
		}
	}

	params := url.Values{}
	params.Set("method", "get")
	params.Set("id", strings.Join(ids, ","))
	params.Set("additional", `["transfer","detail"]`)

	env, err := exec[TaskInfo](ctx, c, params)
	if err != nil {
		return nil, err
	}
	return dataOrError(env, "get task", nil)
}

// CreateTask creates a download task from an HTTP/HTTPS URL or a
// magnet link.
func (c *Client) CreateTask(ctx context.Context, uri, destination string) error {
	if uri == "" {
		return &InvalidInputError{Msg: "uri cannot be empty"}
	}
	if destination == "" {
		return &InvalidInputError{Msg: "destination path cannot be empty"}
	}
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") && !strings.HasPrefix(uri, "magnet:") {
		return &InvalidInputError{Msg: fmt.Sprintf("uri must start with http://, https://, or magnet:, got: %s", uri)}
	}

	c.logger.Debug().Str("uri", uri).Str("destination", destination).Msg("creating download task")

	params := url.Values{}
	params.Set("method", "create")
	params.Set("type", `"url"`)
	params.Set("destination", `"`+destination+`"`)
	params.Set("url", `["`+uri+`"]`)
	params.Set("create_list", "false")

	env, err := exec[TaskCreated](ctx, c, params)
	if err != nil {
		return err
	}
	return checkSuccess(env, "create task", &TaskCreationError{Source: uri})
}

// CreateTaskFromFile creates a download task by uploading a torrent
// file. The request is multipart/form-data with the session id carried
// as a URL query parameter; on session expiry the multipart body is
// rebuilt from scratch for the retry.
func (c *Client) CreateTaskFromFile(ctx context.Context, fileData []byte, fileName, destination string) error {
	if len(fileData) == 0 {
		return &InvalidInputError{Msg: "file data cannot be empty"}
	}
	if fileName == "" {
		return &InvalidInputError{Msg: "file name cannot be empty"}
	}
	if destination == "" {
		return &InvalidInputError{Msg: "destination path cannot be empty"}
	}

	c.logger.Debug().
		Str("fileName", fileName).
		Int("size", len(fileData)).
		Str("destination", destination).
		Msg("creating download task from file")

	fields := [][2]string{
		{"api", taskAPI},
		{"version", taskVersion},
		{"method", "create"},
		{"type", `"file"`},
		{"file", `["torrent"]`},
		{"destination", `"` + destination + `"`},
		{"create_list", "false"},
	}

	env, err := postMultipart[TaskCreated](ctx, c, fields, fileName, fileData)
	if err != nil {
		return err
	}
	if !env.Success && sessionExpired(env.Error) {
		c.logger.Debug().Msg("session expired, re-authenticating")
		if err := c.Authenticate(ctx); err != nil {
			return err
		}
		env, err = postMultipart[TaskCreated](ctx, c, fields, fileName, fileData)
		if err != nil {
			return err
		}
	}
	return checkSuccess(env, "create task from file", &TaskCreationError{Source: fileName})
}

// Pause pauses the task with the given id.
func (c *Client) Pause(ctx context.Context, id string) error {
	if id == "" {
		return &InvalidInputError{Msg: "task id cannot be empty"}
	}

	params := url.Values{}
	params.Set("method", "pause")
	params.Set("id", id)

	env, err := exec[json.RawMessage](ctx, c, params)
	if err != nil {
		return err
	}
	return checkSuccess(env, "pause task", &TaskModificationError{Op: "pause", ID: id})
}

// Resume resumes the task with the given id. The returned operation
// result lists any per-task failures; an empty list means success.
func (c *Client) Resume(ctx context.Context, id string) (*TaskOperation, error) {
	if id == "" {
		return nil, &InvalidInputError{Msg: "task id cannot be empty"}
	}

	params := url.Values{}
	params.Set("method", "resume")
	params.Set("id", id)

	env, err := exec[TaskOperation](ctx, c, params)
	if err != nil {
		return nil, err
	}
	return dataOrError(env, "resume task", &TaskModificationError{Op: "resume", ID: id})
}

// Complete forces the task with the given id to finish downloading.
func (c *Client) Complete(ctx context.Context, id string) (*TaskCompleted, error) {
	if id == "" {
		return nil, &InvalidInputError{Msg: "task id cannot be empty"}
	}

	params := url.Values{}
	params.Set("api", completeAPI)
	params.Set("version", completeVersion)
	params.Set("method", "start")
	params.Set("id", id)

	env, err := exec[TaskCompleted](ctx, c, params)
	if err != nil {
		return nil, err
	}
	return dataOrError(env, "complete task", &TaskModificationError{Op: "complete", ID: id})
}

// DeleteTask removes the task with the given id. With forceComplete
// the downloaded portion is moved to the destination before removal.
func (c *Client) DeleteTask(ctx context.Context, id string, forceComplete bool) (*TaskOperation, error) {
	if id == "" {
		return nil, &InvalidInputError{Msg: "task id cannot be empty"}
	}

	params := url.Values{}
	params.Set("method", "delete")
	params.Set("id", id)
	params.Set("force_complete", strconv.FormatBool(forceComplete))

	env, err := exec[TaskOperation](ctx, c, params)
	if err != nil {
		return nil, err
	}
	return dataOrError(env, "delete task", &TaskModificationError{Op: "delete", ID: id})
}

// ClearCompleted removes all tasks in the finished state.
func (c *Client) ClearCompleted(ctx context.Context) error {
	params := url.Values{}
	params.Set("method", "delete_condition")
	params.Set("status", strconv.Itoa(int(StatusFinished)))

	env, err := exec[json.RawMessage](ctx, c, params)
	if err != nil {
		return err
	}
	return checkSuccess(env, "clear completed tasks", &TaskModificationError{Op: "clear completed"})
}

// exec sends a form request and transparently recovers an expired
// session: re-authenticate once, resend once. If re-authentication
// fails its error propagates; if the resend reports session expiry
// again, that envelope is returned as-is.
func exec[D any](ctx context.Context, c *Client, params url.Values) (*response[D], error) {
	env, err := postForm[D](ctx, c, params, true)
	if err != nil {
		return nil, err
	}
	if !env.Success && sessionExpired(env.Error) {
		c.logger.Debug().Msg("session expired, re-authenticating")
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
		env, err = postForm[D](ctx, c, params, true)
		if err != nil {
			return nil, err
		}
	}
	return env, nil
}

func sessionExpired(e *apiError) bool {
	return e != nil && e.Code == sessionExpiredCode
}

// postForm sends one application/x-www-form-urlencoded POST. Task-API
// envelope fields are filled in unless the caller overrode them, and
// the session id is attached when present and wanted.
func postForm[D any](ctx context.Context, c *Client, params url.Values, withSID bool) (*response[D], error) {
	form := url.Values{}
	for key, vals := range params {
		form[key] = vals
	}
	if form.Get("api") == "" {
		form.Set("api", taskAPI)
		form.Set("version", taskVersion)
	}
	if withSID {
		if sid := c.sessionID(); sid != "" {
			form.Set("_sid", sid)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return roundTrip[D](c, req)
}

// postMultipart sends one multipart/form-data POST for a file upload.
// The body is built fresh on every call so a retry never reuses
// consumed bytes; the session id rides in the URL query.
func postMultipart[D any](ctx context.Context, c *Client, fields [][2]string, fileName string, fileData []byte) (*response[D], error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", field[0], err)
		}
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="torrent"; filename=%q`, fileName))
	header.Set("Content-Type", torrentMIMEType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(fileData); err != nil {
		return nil, fmt.Errorf("write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	uploadURL := c.baseURL + apiPath
	if sid := c.sessionID(); sid != "" {
		uploadURL += "?_sid=" + url.QueryEscape(sid)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return roundTrip[D](c, req)
}

func roundTrip[D any](c *Client, req *http.Request) (*response[D], error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Code: resp.StatusCode, Message: "http request failed with status " + resp.Status}
	}

	var env response[D]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &InvalidResponseError{Msg: fmt.Sprintf("decode envelope: %v", err)}
	}
	return &env, nil
}

// dataOrError applies the envelope decoding rules for operations that
// must return data. fallback is used when the envelope reports failure
// without a structured error; nil falls back to a generic
// InvalidResponseError.
func dataOrError[D any](env *response[D], action string, fallback error) (*D, error) {
	if env.Success {
		if env.Data == nil {
			return nil, &InvalidResponseError{Msg: "no data received"}
		}
		return env.Data, nil
	}
	if env.Error != nil {
		return nil, &APIError{Code: env.Error.Code, Message: "failed to " + action, Errors: env.Error.Errors}
	}
	if fallback != nil {
		return nil, fallback
	}
	return nil, &InvalidResponseError{Msg: "unknown error"}
}

// checkSuccess applies the same rules for operations whose success
// carries no meaningful data.
func checkSuccess[D any](env *response[D], action string, fallback error) error {
	if env.Success {
		return nil
	}
	if env.Error != nil {
		return &APIError{Code: env.Error.Code, Message: "failed to " + action, Errors: env.Error.Errors}
	}
	if fallback != nil {
		return fallback
	}
	return &InvalidResponseError{Msg: "unknown error"}
}
