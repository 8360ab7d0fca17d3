package llm

// CleanSchema prepares a JSON schema for strict structured-output mode.
// Providers reject schemas carrying presentation-only fields, so "title"
// and "default" are stripped and every object level gets
// "additionalProperties": false. The input is not modified.
func CleanSchema(schema map[string]any) map[string]any {
	cleaned := make(map[string]any, len(schema))
	for key, value := range schema {
		switch key {
		case "title", "default":
			continue
		case "properties":
			if properties, ok := value.(map[string]any); ok {
				cleanedProperties := make(map[string]any, len(properties))
				for name, property := range properties {
					cleanedProperties[name] = cleanValue(property)
				}
				cleaned[key] = cleanedProperties
				continue
			}
			cleaned[key] = value
		case "items":
			cleaned[key] = cleanValue(value)
		case "allOf", "anyOf", "oneOf":
			if variants, ok := value.([]any); ok {
				cleanedVariants := make([]any, len(variants))
				for i, variant := range variants {
					cleanedVariants[i] = cleanValue(variant)
				}
				cleaned[key] = cleanedVariants
				continue
			}
			cleaned[key] = value
		case "$defs", "definitions":
			if defs, ok := value.(map[string]any); ok {
				cleanedDefs := make(map[string]any, len(defs))
				for name, def := range defs {
					cleanedDefs[name] = cleanValue(def)
				}
				cleaned[key] = cleanedDefs
				continue
			}
			cleaned[key] = value
		default:
			cleaned[key] = value
		}
	}

	if cleaned["type"] == "object" {
		cleaned["additionalProperties"] = false
	}

	return cleaned
}

func cleanValue(value any) any {
	if nested, ok := value.(map[string]any); ok {
		return CleanSchema(nested)
	}
	return value
}
