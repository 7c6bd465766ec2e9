package httpapi

func openapiSpec() map[string]any {
	employee := map[string]any{
		"type":     "object",
		"required": []string{"firstName", "lastName", "hireDate", "role"},
		"properties": map[string]any{
			"id":        map[string]any{"type": "string", "readOnly": true},
			"firstName": map[string]any{"type": "string"},
			"lastName":  map[string]any{"type": "string"},
			"hireDate":  map[string]any{"type": "string", "format": "date"},
			"role":      map[string]any{"type": "string", "enum": []string{"CEO", "VP", "MANAGER", "LACKEY"}},
			"quote":     map[string]any{"type": "string"},
			"joke":      map[string]any{"type": "string"},
		},
	}
	result := map[string]any{
		"type":       "object",
		"properties": map[string]any{"result": map[string]any{"type": "string"}},
	}
	jsonContent := func(schema any) map[string]any {
		return map[string]any{"application/json": map[string]any{"schema": schema}}
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "employees",
			"version": "1.0.0",
		},
		"components": map[string]any{
			"schemas": map[string]any{"Employee": employee, "Result": result},
		},
		"paths": map[string]any{
			"/employees": map[string]any{
				"get": map[string]any{"summary": "List employees"},
				"post": map[string]any{
					"summary":     "Create employee",
					"requestBody": map[string]any{"content": jsonContent(map[string]any{"$ref": "#/components/schemas/Employee"})},
					"responses": map[string]any{
						"201": map[string]any{"description": "Created; Location points at the new employee"},
						"400": map[string]any{"description": "Validation failed", "content": jsonContent(map[string]any{"$ref": "#/components/schemas/Result"})},
					},
				},
			},
			"/employees/{id}": map[string]any{
				"get": map[string]any{"summary": "Get employee"},
				"put": map[string]any{
					"summary": "Replace employee",
					"responses": map[string]any{
						"204": map[string]any{"description": "Replaced"},
						"400": map[string]any{"description": "Validation failed"},
						"404": map[string]any{"description": "Unknown id"},
					},
				},
				"delete": map[string]any{"summary": "Delete employee"},
			},
		},
	}
}
