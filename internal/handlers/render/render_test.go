package render

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, map[string]any{"key1": 1, "key2": "222"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"key1":1,"key2":"222"}`, w.Body.String())
}

func TestRender_JSONWithStatus(t *testing.T) {
	t.Run("status enforced", func(t *testing.T) {
		w := httptest.NewRecorder()

		JSONWithStatus(w, map[string]int{"id": 1}, http.StatusCreated)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id": 1}`, w.Body.String())
	})

	t.Run("not encodable data", func(t *testing.T) {
		w := httptest.NewRecorder()

		JSONWithStatus(w, map[string]any{"ch": make(chan int)}, http.StatusOK)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotEqual(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	})
}

func TestRender_ServiceError(t *testing.T) {
	w := httptest.NewRecorder()

	ServiceError(w, "Book not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error": "service_error", "message": "Book not found"}`, w.Body.String())
}

// Decode request body into the struct and render the result
func bind[T Struct](t *testing.T, body string) (*httptest.ResponseRecorder, T, error) {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))

	value, err := BindAndValidate[T](w, r)
	return w, value, err
}

func TestRender_BindAndValidate(t *testing.T) {
	type bookRequest struct {
		Title  string `json:"title" validate:"required,notblank,max=10"`
		Email  string `json:"email" validate:"omitempty,email"`
		Stock  int    `json:"stock" validate:"min=0"`
		Role   string `json:"role" validate:"omitempty,oneof=admin member"`
		Token  string `json:"token" validate:"omitempty,uuid"`
		Secret string `json:"-"`
	}

	t.Run("valid", func(t *testing.T) {
		w, value, err := bind[bookRequest](t, `{"title": "Dune", "email": "a@x.com", "stock": 2, "role": "member"}`)

		require.NoError(t, err)
		require.Equal(t, bookRequest{Title: "Dune", Email: "a@x.com", Stock: 2, Role: "member"}, value)
		require.Equal(t, 0, w.Body.Len(), "nothing is written on success")
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name     string
			body     string
			expected string
		}{
			{
				name:     "json parsing error",
				body:     `invalid-json`,
				expected: `{"error": "decoding_failed", "message": "Failed to parse JSON: invalid character 'i' looking for beginning of value"}`,
			},
			{
				name:     "empty body",
				body:     ``,
				expected: `{"error": "decoding_failed", "message": "Failed to parse JSON: EOF"}`,
			},
			{
				name:     "invalid type",
				body:     `{"title": "Dune", "stock": "many"}`,
				expected: `{"error": "decoding_failed", "message": "Invalid data type for field 'stock'"}`,
			},
			{
				name: "required",
				body: `{}`,
				expected: `{"error": "validation_failed", "message": "Request validation failed", "fields": {
					"title": "This field is required"
				}}`,
			},
			{
				name: "blank",
				body: `{"title": " \t "}`,
				expected: `{"error": "validation_failed", "message": "Request validation failed", "fields": {
					"title": "This field is required"
				}}`,
			},
			{
				name: "every message",
				body: `{"title": "Children of Dune", "email": "not-email", "stock": -1, "role": "root", "token": "abc"}`,
				expected: `{"error": "validation_failed", "message": "Request validation failed", "fields": {
					"title": "Value is too long (maximum 10)",
					"email": "Invalid email",
					"stock": "Value is too short (minimum 0)",
					"role": "Value must be one of: admin member",
					"token": "Invalid value"
				}}`,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w, _, err := bind[bookRequest](t, tt.body)

				require.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
				assert.JSONEq(t, tt.expected, w.Body.String())
			})
		}
	})

	t.Run("ignored field not bound", func(t *testing.T) {
		_, value, err := bind[bookRequest](t, `{"title": "Dune", "Secret": "x", "-": "y"}`)

		require.NoError(t, err)
		require.Empty(t, value.Secret)
	})

	t.Run("body too large", func(t *testing.T) {
		body := `{"title": "` + strings.Repeat("a", maxBodyBytes) + `"}`

		w, _, err := bind[bookRequest](t, body)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error": "decoding_failed", "message": "Request body too large"}`, w.Body.String())
	})
}

func Test_validator(t *testing.T) {
	t.Run("notblank", func(t *testing.T) {
		type value struct {
			Name  string `validate:"notblank"`
			Count int    `validate:"notblank"`
		}

		tests := []struct {
			name  string
			value value
			valid bool
		}{
			{"text", value{Name: " a "}, false}, // int field is never valid
			{"spaces", value{Name: "   "}, false},
			{"empty", value{}, false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := validate.Struct(tt.value)
				require.Equal(t, tt.valid, err == nil)
			})
		}

		err := validate.Var(" a ", "notblank")
		require.NoError(t, err, "string with letters is not blank")
		err = validate.Var("\n\t", "notblank")
		require.Error(t, err)
	})

	t.Run("json tag names", func(t *testing.T) {
		type value struct {
			Plain    string
			Named    string `json:"named"`
			Options  string `json:"with_options,omitempty"`
			Excluded string `json:"-"`
		}

		typ := reflect.TypeFor[value]()
		names := make([]string, 0, typ.NumField())
		for i := range typ.NumField() {
			names = append(names, useJSONTagNames(typ.Field(i)))
		}

		require.Equal(t, []string{"", "named", "with_options", ""}, names)
	})
}
