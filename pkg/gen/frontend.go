package gen

import "fmt"

func frontendIndexHTML() string {
	return `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>App</title>
  </head>
  <body>
    <div id="root"></div>
    <script type="module" src="/src/main.tsx"></script>
  </body>
</html>
`
}

func frontendMainTSX(appName string) string {
	return fmt.Sprintf(`import React from 'react'
import ReactDOM from 'react-dom/client'

function App() {
  return (<main style={{ fontFamily: 'sans-serif' }}><h1>Welcome to %s</h1></main>);
}

ReactDOM.createRoot(document.getElementById('root')!).render(<App />)
`, appName)
}

func frontendTSConfig() string {
	return `{
  "compilerOptions": {
    "target": "ES2020",
    "jsx": "react-jsx",
    "module": "ESNext",
    "moduleResolution": "bundler",
    "strict": true,
    "esModuleInterop": true,
    "skipLibCheck": true
  },
  "include": ["src"]
}`
}

func frontendViteConfig() string {
	return "import { defineConfig } from 'vite'\nimport react from '@vitejs/plugin-react'\nexport default defineConfig({ plugins: [react()], server: { host: true } })"
}

func frontendPackageJSON() string {
	return `{
  "name": "frontend",
  "private": true,
  "type": "module",
  "scripts": {
    "dev": "vite",
    "build": "vite build",
    "preview": "vite preview --host"
  },
  "dependencies": {
    "react": "^18.2.0",
    "react-dom": "^18.2.0"
  },
  "devDependencies": {
    "@vitejs/plugin-react": "^4.2.0",
    "typescript": "^5.5.4",
    "vite": "^5.3.0"
  }
}`
}
