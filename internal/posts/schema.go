package posts

import "github.com/probehq/apiprobe/pkg/expect"

// postSchemaJSON is the default post schema, used when no schema file is
// configured. configs/schemas/post.schema.json carries the same document.
const postSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Post",
  "type": "object",
  "required": ["userId", "id", "title", "body"],
  "properties": {
    "userId": {"type": "integer"},
    "id": {"type": "integer"},
    "title": {"type": "string"},
    "body": {"type": "string"}
  }
}`

// Schema compiles the embedded default post schema.
func Schema() *expect.Document {
	return expect.MustCompile("post.schema.json", postSchemaJSON)
}
