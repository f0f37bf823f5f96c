package service

import "errors"

var (
	// ErrNotFound 참조한 스페이스/맵/배치가 존재하지 않음
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden 인증은 됐지만 리소스 소유자가 아님
	ErrForbidden = errors.New("not allowed")
	// ErrInvalidCoordinates 좌표가 스페이스 범위를 벗어남
	ErrInvalidCoordinates = errors.New("coordinates out of bounds")
	// ErrCreationFailed 저장소 수준의 생성 실패
	ErrCreationFailed = errors.New("creation failed")
)
