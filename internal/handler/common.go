package handler

import (
	"fmt"
	"strconv"
	"strings"
)

// sanitizeString 입력 정제 (태그/제어문자 제거)
func sanitizeString(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer("<", "", ">", "", "\"", "", "'", "")
	return replacer.Replace(s)
}

// parseDimensions "{width}x{height}" 형식 파싱. 양수만 허용한다.
func parseDimensions(s string) (int, int, error) {
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed dimensions %q", s)
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed width %q", parts[0])
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed height %q", parts[1])
	}

	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("non-positive dimensions %dx%d", width, height)
	}
	return width, height, nil
}

// formatDimensions "{width}x{height}" 형식으로 직렬화
func formatDimensions(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}
