package schema

import (
	"reflect"
	"strings"
)

// parseTagSetting reads the gorm tag, `column:user_code;primaryKey` gives COLUMN=user_code and PRIMARYKEY=PRIMARYKEY
func parseTagSetting(tags reflect.StructTag) map[string]string {
	setting := map[string]string{}
	for _, part := range strings.Split(tags.Get("gorm"), ";") {
		key, value, found := strings.Cut(part, ":")
		key = strings.ToUpper(strings.TrimSpace(key))
		switch {
		case key == "":
		case found:
			setting[key] = value
		default:
			setting[key] = key
		}
	}
	return setting
}

func checkTruth(val string) bool {
	return !strings.EqualFold(strings.TrimSpace(val), "false")
}
