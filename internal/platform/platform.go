// Package platform defines the social-media platforms a report covers and the
// community feed each one is read from.
package platform

// ID identifies a platform. Values double as JSON keys in archived reports.
type ID string

const (
	YouTube   ID = "youtube"
	Instagram ID = "instagram"
	TikTok    ID = "tiktok"
)

// All lists every platform in report order.
var All = []ID{YouTube, Instagram, TikTok}

// Valid reports whether id names a known platform.
func (id ID) Valid() bool {
	for _, p := range All {
		if p == id {
			return true
		}
	}
	return false
}

// Platform is everything the pipeline needs to know about one platform.
type Platform struct {
	ID      ID
	Name    string // Display name
	FeedURL string // Community listing, JSON or Atom depending on Format
	Format  string // "json" or "rss"

	// Keywords are matched as lower-case substrings of the post title.
	Keywords []string

	// TrendingThreshold marks an insight trending when its score is strictly greater.
	TrendingThreshold int

	// MinScore excludes low-score posts before keyword matching. Nil disables it.
	MinScore *int

	// CheckBody also matches keywords against the post body.
	CheckBody bool
}

// Defaults returns the built-in platform set. Callers get a fresh copy they may modify.
func Defaults() []Platform {
	return []Platform{
		{
			ID:                YouTube,
			Name:              "YouTube",
			FeedURL:           "https://www.reddit.com/r/NewTubers/hot.json",
			Format:            "json",
			Keywords:          []string{"algorithm", "views", "subscribers", "monetiz", "youtube", "growth"},
			TrendingThreshold: 100,
		},
		{
			ID:                Instagram,
			Name:              "Instagram",
			FeedURL:           "https://www.reddit.com/r/InstagramMarketing/hot.json",
			Format:            "json",
			Keywords:          []string{"algorithm", "engagement", "reach", "followers", "instagram", "reels"},
			TrendingThreshold: 50,
		},
		{
			ID:                TikTok,
			Name:              "TikTok",
			FeedURL:           "https://www.reddit.com/r/TikTokHelp/hot.json",
			Format:            "json",
			Keywords:          []string{"algorithm", "fyp", "views", "viral", "tiktok", "shadow"},
			TrendingThreshold: 75,
		},
	}
}

// Lookup returns the platform with the given ID from ps.
func Lookup(ps []Platform, id ID) (Platform, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return Platform{}, false
}

// Fallback is a canned insight used when a platform's feed cannot be read.
// It mirrors report.Insight without importing it.
type Fallback struct {
	ID       string
	Title    string
	Content  string
	Score    int
	Comments int
	Author   string
	Category string
	Trending bool
}

// FallbackURL is the link used by canned insights.
const FallbackURL = "#"

// FallbackData returns the canned insights for id. The created time of each
// insight is supplied by the caller so runs stay reproducible in tests.
func FallbackData(id ID) []Fallback {
	switch id {
	case YouTube:
		return []Fallback{
			{
				ID:       "yt_1",
				Title:    "YouTube 알고리즘 2024년 12월 핵심 변화사항",
				Content:  "최신 YouTube 알고리즘 분석에 따르면, 시청 완료율과 사용자 참여도가 이전보다 더욱 중요한 지표로 작용하고 있습니다. 특히 첫 15초 내 시청자 유지율이 전체 영상의 노출 빈도를 결정하는 핵심 요소로 부상했습니다.",
				Score:    342,
				Comments: 89,
				Author:   "algorithm_expert",
				Category: "algorithm",
				Trending: true,
			},
			{
				ID:       "yt_2",
				Title:    "구독자 증가 후 조회수 감소 현상 해결 방법",
				Content:  "많은 크리에이터들이 경험하는 '구독자는 늘어나는데 조회수는 줄어드는' 현상의 원인과 해결책을 분석합니다. 알고리즘이 구독자 품질을 평가하는 새로운 방식을 이해하는 것이 중요합니다.",
				Score:    256,
				Comments: 67,
				Author:   "creator_insights",
				Category: "growth",
			},
		}
	case Instagram:
		return []Fallback{
			{
				ID:       "ig_1",
				Title:    "인스타그램 릴스 알고리즘 최신 업데이트 분석",
				Content:  "2024년 12월 인스타그램이 릴스 알고리즘을 대폭 개편했습니다. 이제 '저장' 횟수와 '공유' 횟수가 '좋아요'보다 더 높은 가중치를 가지며, 댓글의 질적 측면도 평가 대상에 포함되었습니다.",
				Score:    428,
				Comments: 112,
				Author:   "insta_strategist",
				Category: "algorithm",
				Trending: true,
			},
			{
				ID:       "ig_2",
				Title:    "팔로워 대비 낮은 도달률 문제 완전 해결 가이드",
				Content:  "인스타그램 알고리즘 변화로 인해 팔로워 수 대비 실제 도달률이 현저히 낮아지는 현상이 증가하고 있습니다. 스토리 상호작용, 댓글 참여도, DM 활동 등을 통한 해결 전략을 제시합니다.",
				Score:    321,
				Comments: 94,
				Author:   "growth_hacker",
				Category: "issue",
			},
		}
	case TikTok:
		return []Fallback{
			{
				ID:       "tt_1",
				Title:    "틱톡 FYP 알고리즘 완전 정복 가이드 2024",
				Content:  "틱톡의 For You Page 진입을 위한 최신 전략을 공개합니다. 완료율 85% 이상 달성, 첫 3초 훅 최적화, 해시태그 전략, 최적 업로드 시간대 등 실전에서 검증된 방법들을 상세히 분석합니다.",
				Score:    567,
				Comments: 203,
				Author:   "tiktok_master",
				Category: "tips",
				Trending: true,
			},
			{
				ID:       "tt_2",
				Title:    "틱톡 그림자밴 해제 및 예방 완벽 매뉴얼",
				Content:  "최근 증가하고 있는 틱톡 그림자밴 문제의 원인 분석과 해결 방법을 제시합니다. 커뮤니티 가이드라인 준수, 콘텐츠 다양성 확보, 알고리즘 리셋 방법 등을 포함한 종합적인 대응 전략입니다.",
				Score:    445,
				Comments: 156,
				Author:   "viral_expert",
				Category: "issue",
			},
		}
	}
	return nil
}
