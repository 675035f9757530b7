package canvas

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/younsl/gradesync/pkg/publishing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient("secret-token", server.URL, "101")
	require.NoError(t, err)
	return c
}

func TestCheckStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/courses/101/publish_to_sis", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"sis_publish_overall_status": "published",
			"sis_publish_statuses": {
				"Synced": [{"id": 1}, {"id": 2}, {"id": 3}],
				"Missing SIS ID": [{"id": 4}]
			}
		}`)
	})

	resp, err := c.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.HasStatus)
	assert.Equal(t, "published", resp.OverallStatus)
	assert.Equal(t, publishing.StatusReport{"Synced": 3, "Missing SIS ID": 1}, resp.Statuses)
}

func TestCheckStatus_JSONGuard(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `while(1);{"sis_publish_overall_status":"pending"}`)
	})

	resp, err := c.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.OverallStatus)
	assert.Nil(t, resp.Statuses)
}

func TestCheckStatus_MissingStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"sis_publish_statuses": {"Synced": []}}`)
	})

	resp, err := c.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, resp.HasStatus)
	assert.Equal(t, publishing.StatusReport{"Synced": 0}, resp.Statuses)
}

func TestCheckStatus_LenientPayload(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus string
		expectedReport publishing.StatusReport
	}{
		{
			name:           "non-list entries count as zero",
			body:           `{"sis_publish_overall_status":"published","sis_publish_statuses":{"Synced":[1,2],"Odd":"x","Nothing":null}}`,
			expectedStatus: "published",
			expectedReport: publishing.StatusReport{"Synced": 2, "Odd": 0, "Nothing": 0},
		},
		{
			name:           "statuses not an object",
			body:           `{"sis_publish_overall_status":"pending","sis_publish_statuses":[1,2,3]}`,
			expectedStatus: "pending",
			expectedReport: publishing.StatusReport{},
		},
		{
			name:           "non-string overall status",
			body:           `{"sis_publish_overall_status":42}`,
			expectedStatus: "42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})

			resp, err := c.CheckStatus(context.Background())
			require.NoError(t, err)
			assert.True(t, resp.HasStatus)
			assert.Equal(t, tt.expectedStatus, resp.OverallStatus)
			assert.Equal(t, tt.expectedReport, resp.Statuses)
		})
	}
}

func TestCheckStatus_NonStringStatusParsesAsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"sis_publish_overall_status":true}`)
	})

	resp, err := c.CheckStatus(context.Background())
	require.NoError(t, err)
	status, ok := publishing.ParseStatus(resp.OverallStatus)
	assert.False(t, ok)
	assert.Equal(t, publishing.StatusError, status)
}

func TestDo_LimitsResponseSize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"sis_publish_overall_status":"`+strings.Repeat("a", maxResponseBytes)+`"}`)
	})

	_, err := c.CheckStatus(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestPublish_SendsForm(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		values, err := url.ParseQuery(string(body))
		assert.NoError(t, err)
		assert.Equal(t, "1", values.Get("publish_grades"))
		assert.Equal(t, "abc", values.Get("authenticity_token"))

		io.WriteString(w, `{"sis_publish_overall_status": "publishing"}`)
	})
	WithPublishForm(PublishForm{AuthenticityToken: "abc", PublishGrades: true})(c)

	resp, err := c.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "publishing", resp.OverallStatus)
}

func TestDo_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"errors":[{"message":"Invalid access token."}]}`,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrUnauthorized))
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   "boom",
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
				assert.Equal(t, "boom", apiErr.Body)
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   "<html>",
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "failed to decode response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.Publish(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNewClient_RequiresCourse(t *testing.T) {
	_, err := NewClient("token", "https://canvas.example.edu", "")
	require.Error(t, err)
}

func TestNewClient_BaseURLWithPath(t *testing.T) {
	c, err := NewClient("token", "https://canvas.example.edu/lms", "7")
	require.NoError(t, err)
	assert.Equal(t, "https://canvas.example.edu/lms/", c.BaseURL())

	u, err := c.baseURL.Parse(c.publishPath())
	require.NoError(t, err)
	assert.Equal(t, "https://canvas.example.edu/lms/courses/7/publish_to_sis", u.String())
}
