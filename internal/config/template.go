package config

// Template is the starter config written by `gate init`.
const Template = `# gate.config.yml
# Phases run their gates in order. With stopOnFirstFailure (the default),
# gates after the first failure are reported as skipped.
version: 1

phases:
  fast: [lint, typecheck, test]
  pr: [lint, typecheck, test, build]

gates:
  lint:
    command: pnpm -s eslint .
    timeout: 120
  typecheck:
    command: pnpm -s tsc --noEmit
    timeout: 120
  test:
    command: pnpm -s vitest run
    timeout: 300
  build:
    command: pnpm -s build
    timeout: 600

options:
  logTailLines: 50
  stopOnFirstFailure: true
`
