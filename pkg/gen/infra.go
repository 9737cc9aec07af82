package gen

import "fmt"

// composeFile renders the three-service development compose: api with
// hot reload, postgres, vite dev server.
func composeFile(name string) string {
	return fmt.Sprintf(`version: "3.9"
services:
  api:
    image: python:3.11-slim
    working_dir: /app
    volumes: ["./:/app"]
    command: sh -lc "pip install -r backend/requirements.txt && uvicorn backend.app.main:app --host 0.0.0.0 --port 8000"
    ports: ["8000:8000"]
  db:
    image: postgres:15
    environment:
      - POSTGRES_DB=%s_db
      - POSTGRES_USER=admin
      - POSTGRES_PASSWORD=secret
    ports: ["5432:5432"]
  frontend:
    image: node:20
    working_dir: /app/frontend
    volumes: ["./:/app"]
    command: sh -lc "npm ci && npm run dev -- --host"
    ports: ["5173:5173"]
`, name)
}
