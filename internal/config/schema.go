package config

// configSchema constrains the .secrets-cli.yaml structure. Unknown keys are
// rejected so a misspelled field fails loudly instead of being ignored.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "proxy": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "url": {
          "type": "string",
          "pattern": "^https?://"
        },
        "timeout": {
          "type": "integer",
          "minimum": 1,
          "maximum": 300
        }
      }
    },
    "trust": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "file": {
          "type": "string"
        },
        "type": {
          "type": "string",
          "enum": ["pem", "pkcs12"]
        },
        "password": {
          "type": "string"
        }
      }
    },
    "defaults": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "app": {
          "type": "string"
        },
        "domain": {
          "type": "string"
        }
      }
    }
  }
}`
