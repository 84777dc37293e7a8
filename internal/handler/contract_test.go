package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-content-admin/internal/dto"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + filepath.ToSlash(schemaPath))
	require.NoError(t, err)
	return schema
}

func validateBody(t *testing.T, schema *jsonschema.Schema, resp *http.Response) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestPopulatedAICourseContract(t *testing.T) {
	app := newContentApp(t)

	var course dto.AICourseResponse
	expectStatus(t, doJSON(t, app, http.MethodPost, "/api/aiCourses", fiber.Map{
		"title": "Image prompting",
		"tree":  []fiber.Map{{"topic": "Basics", "canRead": true}},
	}), fiber.StatusCreated, &course)

	var batch dto.AILessonBatchResponse
	expectStatus(t, doJSON(t, app, http.MethodPost, "/api/aiLessons/batch", fiber.Map{
		"aiCourseId": course.ID,
		"levelIndex": 0,
		"lessons": []fiber.Map{
			{"title": "Composition", "content": "<p>rule of thirds</p>"},
			{"title": "Lighting", "content": "<p>golden hour</p>", "photos": []string{"https://cdn.example.com/light.png"}},
		},
	}), fiber.StatusCreated, &batch)
	require.Len(t, batch.Created, 2)

	resp := doJSON(t, app, http.MethodGet, "/api/aiCourses/"+course.ID+"?populate=lessons", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	validateBody(t, compileSchema(t, "populated_ai_course.schema.json"), resp)
}

func TestListEnvelopeContract(t *testing.T) {
	app := newContentApp(t)
	schema := compileSchema(t, "list_envelope.schema.json")

	resp := doJSON(t, app, http.MethodGet, "/api/certificateTemplates", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	validateBody(t, schema, resp)

	expectStatus(t, doJSON(t, app, http.MethodPost, "/api/courses", fiber.Map{"title": "Go"}), fiber.StatusCreated, nil)
	resp = doJSON(t, app, http.MethodGet, "/api/courses?limit=500", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	validateBody(t, schema, resp)
}
