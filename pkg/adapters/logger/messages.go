package logger

import (
	"github.com/ideamans/go-l10n"
	"github.com/user/ainspire/pkg/locale"
)

func init() {
	locale.Register(locale.Korean, l10n.LexiconMap{
		// Orchestration level messages (info)
		"Queued %d video(s)":                           "동영상 %d개를 대기열에 추가했습니다",
		"Ignoring %s: not a video":                     "%s은(는) 동영상이 아니므로 건너뜁니다",
		"Video extraction cancelled":                   "프레임 추출을 취소했습니다",
		"Credential rejected, clearing stored key: %v": "API 키가 거부되어 저장된 키를 삭제합니다: %v",
		"Clearing stored credential failed: %v":        "저장된 API 키 삭제 실패: %v",
		"Imported %d image(s)":                         "이미지 %d개를 가져왔습니다",

		// Video queue
		"Extracting frames from %s every %.1fs": "%s에서 %.1f초 간격으로 프레임 추출 중",
		"Extraction of %s cancelled":            "%s 추출이 취소되었습니다",
		"Extraction of %s failed: %v":           "%s 추출 실패: %v",
		"Finished extracting %s":                "%s 추출 완료",
		"Dropped %d queued video(s)":            "대기 중인 동영상 %d개를 취소했습니다",

		// Sampler
		"Could not open %s: %v":                            "%s을(를) 열 수 없습니다: %v",
		"Closing decoder for %s: %v":                       "%s 디코더 종료 중 오류: %v",
		"%s has no playable duration":                      "%s에 재생 가능한 구간이 없습니다",
		"Sampling %s: %.2fs every %.2fs":                   "%s 샘플링: 길이 %.2f초, 간격 %.2f초",
		"Decoding %s stopped at %.2fs: %v":                 "%s 디코딩이 %.2f초에서 중단되었습니다: %v",
		"Encoding frame %d of %s failed: %v":               "%[2]s의 프레임 %[1]d 인코딩 실패: %[3]v",
		"Saving debug frame failed: %v":                    "디버그 프레임 저장 실패: %v",
		"MP4 parser could not read %s, trying ffprobe: %v": "MP4 파서가 %s을(를) 읽지 못해 ffprobe를 사용합니다: %v",

		// Classification
		"Classifying frame %s from %s at %.2fs":                                 "%[2]s의 %[3].2f초 프레임 %[1]s 분류 중",
		"No labels for frame %s":                                                "프레임 %s에 대한 라벨이 없습니다",
		"Skipping frame %s from %s: %v":                                         "%[2]s의 프레임 %[1]s을(를) 건너뜁니다: %[3]v",
		"Classifier rejected the credential, discarding %d queued frame(s): %v": "분류기가 API 키를 거부하여 대기 중인 프레임 %d개를 폐기합니다: %v",
		"Model %s used %d tokens":                                               "모델 %s이(가) 토큰 %d개를 사용했습니다",

		// Server
		"Saving upload %s failed: %v":    "업로드 %s 저장 실패: %v",
		"Removing %s failed: %v":         "%s 삭제 실패: %v",
		"Export failed: %v":              "내보내기 실패: %v",
		"Building archive failed: %v":    "압축 파일 생성 실패: %v",
		"Saving credential failed: %v":   "API 키 저장 실패: %v",
		"Clearing credential failed: %v": "API 키 삭제 실패: %v",
		"Writing response failed: %v":    "응답 쓰기 실패: %v",
	})
}
