// Package community is a client for the community REST API.
package community

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	commententity "github.com/nextstepz/community/internal/domain/comment/entity"
	companyentity "github.com/nextstepz/community/internal/domain/company/entity"
	leaderboardentity "github.com/nextstepz/community/internal/domain/leaderboard/entity"
	postentity "github.com/nextstepz/community/internal/domain/post/entity"
	questionentity "github.com/nextstepz/community/internal/domain/question/entity"
	userentity "github.com/nextstepz/community/internal/domain/user/entity"
	"github.com/nextstepz/community/internal/thread"
	"github.com/nextstepz/community/internal/validate"
)

const (
	defaultBaseURL = "http://localhost:8080/api/v1/community"
	defaultTimeout = 30 * time.Second
)

// Client talks to the community API on behalf of one user
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithToken sets the bearer token sent with every request
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the timeout of the default HTTP client
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a new community API client
func New(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetToken replaces the bearer token, for example after logging in
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError represents an error returned by the API
type APIError struct {
	Status  int               `json:"-"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("community API error: %s (status: %d)", e.Message, e.Status)
}

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// LikeState is the server's view of a like after a toggle
type LikeState struct {
	IsLiked    bool `json:"isLiked"`
	LikesCount int  `json:"likesCount"`
}

// Register creates an account and signs in as it
func (c *Client) Register(ctx context.Context, form validate.RegisterForm) (*userentity.Session, error) {
	var out userentity.Session
	if err := c.call(ctx, http.MethodPost, "/auth/register", nil, form, &out); err != nil {
		return nil, err
	}
	c.token = out.AccessToken
	return &out, nil
}

// Login signs in and returns the session; the client keeps using its token
func (c *Client) Login(ctx context.Context, form validate.LoginForm) (*userentity.Session, error) {
	var out userentity.Session
	if err := c.call(ctx, http.MethodPost, "/auth/login", nil, form, &out); err != nil {
		return nil, err
	}
	c.token = out.AccessToken
	return &out, nil
}

// PostQuery selects a page of the feed
type PostQuery struct {
	Page     int
	Limit    int
	Category string
	Hashtags []string
	Topics   []string
	Search   string
}

func (q PostQuery) values() url.Values {
	v := url.Values{}
	setInt(v, "page", q.Page)
	setInt(v, "limit", q.Limit)
	setString(v, "category", q.Category)
	setString(v, "q", q.Search)
	for _, h := range q.Hashtags {
		v.Add("hashtag", h)
	}
	for _, t := range q.Topics {
		v.Add("topic", t)
	}
	return v
}

// Posts returns one page of the feed
func (c *Client) Posts(ctx context.Context, q PostQuery) (*postentity.Page, error) {
	var out postentity.Page
	if err := c.call(ctx, http.MethodGet, "/posts", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Post returns a single post
func (c *Client) Post(ctx context.Context, id string) (*postentity.Post, error) {
	var out postentity.Post
	if err := c.call(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SharedPost returns a post through its public share link
func (c *Client) SharedPost(ctx context.Context, id string) (*postentity.Post, error) {
	var out postentity.Post
	if err := c.call(ctx, http.MethodGet, "/shared/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePost publishes a post
func (c *Client) CreatePost(ctx context.Context, form validate.PostForm) (*postentity.Post, error) {
	var out postentity.Post
	if err := c.call(ctx, http.MethodPost, "/posts", nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePost edits a post owned by the caller
func (c *Client) UpdatePost(ctx context.Context, id string, form validate.PostForm) (*postentity.Post, error) {
	var out postentity.Post
	if err := c.call(ctx, http.MethodPatch, "/posts/"+url.PathEscape(id), nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePost removes a post owned by the caller
func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil, nil)
}

// LikePost toggles the caller's like on a post
func (c *Client) LikePost(ctx context.Context, id string) (LikeState, error) {
	var out LikeState
	err := c.call(ctx, http.MethodPost, "/posts/"+url.PathEscape(id)+"/like", nil, nil, &out)
	return out, err
}

// SharePost counts a share and returns the new share count
func (c *Client) SharePost(ctx context.Context, id string) (int, error) {
	var out postentity.ShareResult
	err := c.call(ctx, http.MethodPost, "/posts/"+url.PathEscape(id)+"/share", nil, nil, &out)
	return out.ShareCount, err
}

func threadPath(target commententity.Target) string {
	return "/" + string(target.Type) + "s/" + url.PathEscape(target.ID) + "/comments"
}

// Comments returns the nested thread under a post or question
func (c *Client) Comments(ctx context.Context, target commententity.Target) ([]thread.Nested, error) {
	var out []thread.Nested
	if err := c.call(ctx, http.MethodGet, threadPath(target), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddComment posts a comment, or a reply when parentID is set
func (c *Client) AddComment(ctx context.Context, target commententity.Target, content, parentID string) (*thread.Comment, error) {
	body := validate.CommentForm{Content: content, ParentID: parentID}
	var out thread.Comment
	if err := c.call(ctx, http.MethodPost, threadPath(target), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LikeComment toggles the caller's like on a comment
func (c *Client) LikeComment(ctx context.Context, id string) (LikeState, error) {
	var out LikeState
	err := c.call(ctx, http.MethodPost, "/comments/"+url.PathEscape(id)+"/like", nil, nil, &out)
	return out, err
}

// Questions returns a page of questions, newest first
func (c *Client) Questions(ctx context.Context, page, limit int) ([]questionentity.Question, error) {
	v := url.Values{}
	setInt(v, "page", page)
	setInt(v, "limit", limit)

	var out []questionentity.Question
	if err := c.call(ctx, http.MethodGet, "/questions", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Question returns a single question
func (c *Client) Question(ctx context.Context, id string) (*questionentity.Question, error) {
	var out questionentity.Question
	if err := c.call(ctx, http.MethodGet, "/questions/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateQuestion asks a question
func (c *Client) CreateQuestion(ctx context.Context, form validate.QuestionForm) (*questionentity.Question, error) {
	var out questionentity.Question
	if err := c.call(ctx, http.MethodPost, "/questions", nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LikeQuestion toggles the caller's like on a question
func (c *Client) LikeQuestion(ctx context.Context, id string) (LikeState, error) {
	var out LikeState
	err := c.call(ctx, http.MethodPost, "/questions/"+url.PathEscape(id)+"/like", nil, nil, &out)
	return out, err
}

// ViewQuestion records a view and returns the new view count
func (c *Client) ViewQuestion(ctx context.Context, id string) (int, error) {
	var out questionentity.ViewResult
	err := c.call(ctx, http.MethodPost, "/questions/"+url.PathEscape(id)+"/view", nil, nil, &out)
	return out.ViewCount, err
}

// AcceptAnswer marks a comment as the accepted answer of the caller's question
func (c *Client) AcceptAnswer(ctx context.Context, questionID, commentID string) (*questionentity.Question, error) {
	body := map[string]string{"commentId": commentID}
	var out questionentity.Question
	if err := c.call(ctx, http.MethodPost, "/questions/"+url.PathEscape(questionID)+"/accept", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FeaturedQuestions returns the most liked questions
func (c *Client) FeaturedQuestions(ctx context.Context, limit int) ([]questionentity.Question, error) {
	v := url.Values{}
	setInt(v, "limit", limit)

	var out []questionentity.Question
	if err := c.call(ctx, http.MethodGet, "/questions/featured", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopExperts returns the users with the most answers
func (c *Client) TopExperts(ctx context.Context, limit int) ([]questionentity.TopExpert, error) {
	v := url.Values{}
	setInt(v, "limit", limit)

	var out []questionentity.TopExpert
	if err := c.call(ctx, http.MethodGet, "/questions/top-experts", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// QuestionStats returns the Q&A summary
func (c *Client) QuestionStats(ctx context.Context) (*questionentity.Stats, error) {
	var out questionentity.Stats
	if err := c.call(ctx, http.MethodGet, "/questions/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeaderboardQuery selects part of the leaderboard
type LeaderboardQuery struct {
	Limit  int
	Sort   string
	Search string
}

// Leaderboard returns ranked community members
func (c *Client) Leaderboard(ctx context.Context, q LeaderboardQuery) ([]leaderboardentity.Entry, error) {
	v := url.Values{}
	setInt(v, "limit", q.Limit)
	setString(v, "sort", q.Sort)
	setString(v, "q", q.Search)

	var out []leaderboardentity.Entry
	if err := c.call(ctx, http.MethodGet, "/leaderboard", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Follow toggles following a user
func (c *Client) Follow(ctx context.Context, userID string) (*userentity.FollowResult, error) {
	var out userentity.FollowResult
	if err := c.call(ctx, http.MethodPost, "/users/"+url.PathEscape(userID)+"/follow", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Suggestions returns a few users the caller might follow
func (c *Client) Suggestions(ctx context.Context) ([]userentity.Summary, error) {
	var out []userentity.Summary
	if err := c.call(ctx, http.MethodGet, "/users/suggestions", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CompanyQuery selects a page of the company directory
type CompanyQuery struct {
	Search          string
	Locations       []string
	Sizes           []string
	BusinessTypes   []string
	EmploymentTypes []string
	Tags            []string
	MinRating       float64
	SalaryMin       float64
	SalaryMax       float64
	Sort            string
	Page            int
	PerPage         int
}

func (q CompanyQuery) values() url.Values {
	v := url.Values{}
	setString(v, "q", q.Search)
	setString(v, "sort", q.Sort)
	setInt(v, "page", q.Page)
	setInt(v, "perPage", q.PerPage)
	setFloat(v, "minRating", q.MinRating)
	setFloat(v, "salaryMin", q.SalaryMin)
	setFloat(v, "salaryMax", q.SalaryMax)
	for key, list := range map[string][]string{
		"location":   q.Locations,
		"size":       q.Sizes,
		"type":       q.BusinessTypes,
		"employment": q.EmploymentTypes,
		"tag":        q.Tags,
	} {
		for _, s := range list {
			v.Add(key, s)
		}
	}
	return v
}

// Companies returns one page of the company directory
func (c *Client) Companies(ctx context.Context, q CompanyQuery) (*companyentity.Page, error) {
	var out companyentity.Page
	if err := c.call(ctx, http.MethodGet, "/companies", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// call builds a request against the API and decodes the response into out
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return apiErr
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

func setString(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}

func setInt(v url.Values, key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func setFloat(v url.Values, key string, f float64) {
	if f > 0 {
		v.Set(key, strconv.FormatFloat(f, 'f', -1, 64))
	}
}
