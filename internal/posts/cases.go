// Package posts holds the canonical checks for the posts resource of a
// JSONPlaceholder-compatible API.
package posts

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/probehq/apiprobe/internal/suite"
	"github.com/probehq/apiprobe/pkg/expect"
)

// schemaValidatedItems caps how many list items each case runs through the
// schema; validating all hundred posts per case adds nothing.
const schemaValidatedItems = 5

// Cases returns the posts suite in execution order.
func Cases() []suite.Case {
	return []suite.Case{
		listPosts(),
		getSinglePost(),
		filterByUser(1),
		filterByUser(2),
		createPost(),
		updatePost(),
		deletePost(),
		unknownEndpoint(),
		outOfRangeID(),
		postsStructure(),
	}
}

func listPosts() suite.Case {
	return suite.Case{
		Name: "list posts",
		Run: func(ctx context.Context, env *suite.Env) error {
			resp, err := env.Client.Get(ctx, "/posts", nil)
			if err != nil {
				return err
			}
			if err := expect.StatusCode(resp, http.StatusOK); err != nil {
				return err
			}
			data, err := expect.JSON(resp)
			if err != nil {
				return err
			}
			if err := expect.NonEmptyList(data); err != nil {
				return err
			}
			return validateItems(env, data, schemaValidatedItems)
		},
	}
}

func getSinglePost() suite.Case {
	return suite.Case{
		Name: "get single post",
		Run: func(ctx context.Context, env *suite.Env) error {
			resp, err := env.Client.Get(ctx, "/posts/1", nil)
			if err != nil {
				return err
			}
			if err := expect.StatusCode(resp, http.StatusOK); err != nil {
				return err
			}
			data, err := expect.JSON(resp)
			if err != nil {
				return err
			}
			if err := validateSchema(env, data); err != nil {
				return err
			}
			return expect.FieldEquals(data, "id", 1)
		},
	}
}

func filterByUser(userID int) suite.Case {
	return suite.Case{
		Name: fmt.Sprintf("filter posts by user %d", userID),
		Run: func(ctx context.Context, env *suite.Env) error {
			resp, err := env.Client.Get(ctx, "/posts", map[string]string{
				"userId": strconv.Itoa(userID),
			})
			if err != nil {
				return err
			}
			if err := expect.StatusCode(resp, http.StatusOK); err != nil {
				return err
			}
			data, err := expect.JSON(resp)
			if err != nil {
				return err
			}
			if err := expect.NonEmptyList(data); err != nil {
				return err
			}
			list := data.([]interface{})
			for i := range list {
				if err := expect.FieldEquals(list[i], "userId", userID); err != nil {
					return fmt.Errorf("post at index %d: %w", i, err)
				}
			}
			return nil
		},
	}
}

func createPost() suite.Case {
	payload := map[string]interface{}{
		"title":  "probe post",
		"body":   "created by apiprobe",
		"userId": 7,
	}
	return suite.Case{
		Name: "create post",
		Run: func(ctx context.Context, env *suite.Env) error {
			resp, err := env.Client.Post(ctx, "/posts", payload)
			if err != nil {
				return err
			}
			if err := expect.StatusCode(resp, http.StatusCreated); err != nil {
				return err
			}
			data, err := expect.JSON(resp)
			if err != nil {
				return err
			}
			for field, want := range payload {
				if err := expect.FieldEquals(data, field, want); err != nil {
					return err
				}
			}
			if _, err := expect.Field(data, "id"); err != nil {
				return err
			}
			return nil
		},
	}
}

func updatePost() suite.Case {
	payload := map[string]interface{}{
		"id":     1,
		"title":  "updated post",
		"body":   "updated by apiprobe",
		"userId": 1,
	}
	return suite.Case{
		Name: "update post",
		Run: func(ctx context.Context, env *suite.Env) error {
			resp, err := env.Client.Put(ctx, "/posts/1", payload)
			if err != nil {
				return err
			}
			if err := expect.StatusCode(resp, http.StatusOK); err != nil {
				return err
			}
			data, err := expect.JSON(resp)
			if err != nil {
				return err
			}
			if err := expect.FieldEquals(data, "id", 1); err != nil {
				return err
			}
			return expect.FieldEquals(data, "title", "updated post")
		},
	}
}

func deletePost() suite.Case {
	return suite.Case{
		Name: "delete post",
		Run: func(ctx context.Context, env *suite.Env) error {
			resp, err := env.Client.Delete(ctx, "/posts/1")
			if err != nil {
				return err
			}
			// Backends answer deletes with 200 or an empty 204.
			return expect.StatusIn(resp, http.StatusOK, http.StatusNoContent)
		},
	}
}

func unknownEndpoint() suite.Case {
	return suite.Case{
		Name: "unknown endpoint returns 404",
		Run: func(ctx context.Context, env *suite.Env) error {
			resp, err := env.Client.Get(ctx, "/postz", nil)
			if err != nil {
				return err
			}
			return expect.StatusCode(resp, http.StatusNotFound)
		},
	}
}

func outOfRangeID() suite.Case {
	return suite.Case{
		Name: "out of range id returns 404",
		Run: func(ctx context.Context, env *suite.Env) error {
			resp, err := env.Client.Get(ctx, "/posts/99999", nil)
			if err != nil {
				return err
			}
			return expect.StatusCode(resp, http.StatusNotFound)
		},
	}
}

func postsStructure() suite.Case {
	return suite.Case{
		Name: "posts structure",
		Run: func(ctx context.Context, env *suite.Env) error {
			resp, err := env.Client.Get(ctx, "/posts", nil)
			if err != nil {
				return err
			}
			if err := expect.StatusCode(resp, http.StatusOK); err != nil {
				return err
			}
			data, err := expect.JSON(resp)
			if err != nil {
				return err
			}
			if err := expect.MinLen(data, 100); err != nil {
				return err
			}
			first, err := expect.Item(data, 0)
			if err != nil {
				return err
			}
			for field, kind := range map[string]string{
				"userId": "integer",
				"id":     "integer",
				"title":  "string",
				"body":   "string",
			} {
				if err := expect.FieldType(first, field, kind); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// validateSchema runs the configured schema against one decoded document.
func validateSchema(env *suite.Env, data interface{}) error {
	if env.Schema == nil {
		return fmt.Errorf("no post schema configured")
	}
	return env.Schema.Validate(data)
}

// validateItems schema-checks up to limit items of a decoded list.
func validateItems(env *suite.Env, data interface{}, limit int) error {
	list, ok := data.([]interface{})
	if !ok {
		return &expect.FieldError{Field: "length", Expected: "array", Got: fmt.Sprintf("%T", data)}
	}
	if len(list) < limit {
		limit = len(list)
	}
	for i := 0; i < limit; i++ {
		if err := validateSchema(env, list[i]); err != nil {
			return fmt.Errorf("post at index %d: %w", i, err)
		}
	}
	return nil
}
