package extract

// Prompts for the model-assisted paths. Responses are always run through
// textnorm before structural parsing; the prompts still ask for bare JSON
// to keep the recovery path short.

const requirementsSystemPrompt = "Return ONLY a JSON array of requirements. No markdown or code fences."

const requirementsPromptTemplate = `Return ONLY a JSON array of requirements with fields id|text|component|priority|acceptance.
Keep each requirement atomic and testable. If any field is unknown, omit it (caller fills defaults).
No markdown or code fences.
PRD:
%s`

const rulesSystemPrompt = "Return ONLY a JSON array of business rules. No markdown or code fences."

const rulesPromptTemplate = `Extract atomic business rules as JSON:
[{"id":"BR-0001","target":"Invoice.total","kind":"constraint|derivation|transition","expr":"comparison or membership expression","message":"..."}, ...]
Rules must be testable and refer to concrete entity fields.
PRD:
%s`

const enrichSystemPrompt = `Output ONLY one structured block (prefer JSON) describing entities and workflows. No prose, no Markdown, no fences. Keys:
entities: [ { name: str, fields: [ { name: str, type: str, pk?: bool, unique?: bool, fk?: str } ] } ]
workflows: [ { name: str, trigger: str, actions: [str,...] } ]`

const enrichPromptTemplate = `PRD:
%s

Return a single JSON object (preferred) or YAML with keys: entities, workflows.`

const specSystemPrompt = "Return ONLY a single JSON object (no markdown). " +
	"It MUST contain keys: meta, stacks, entities, workflows, requirements, integrations, non_functional, ci_cd, constraints. " +
	"If a value is not explicitly stated in the PRD, use the string 'unspecified'."

const specPromptTemplate = `JSON Schema:
%s

Template (shape only):
%s

PRD:
%s

Output: ONE JSON object only.`

// specTemplate shows the model the expected shape without constraining
// values.
const specTemplate = `{
  "meta": {"name": "<string>", "domain": "<string>", "version": "<string>"},
  "stacks": {
    "backend": {"framework": "<string>", "lang": "<string>", "orm": "<string>", "runtime": "<string>"},
    "frontend": {"framework": "<string>", "lang": "<string>", "ui": "<string>"},
    "database": {"type": "<string>", "version": "<string>"},
    "infra": {"orchestrator": "<string>", "cloud": "<string>"}
  },
  "entities": [], "workflows": [], "requirements": [], "integrations": {}, "non_functional": {}, "ci_cd": {}, "constraints": {}
}`
