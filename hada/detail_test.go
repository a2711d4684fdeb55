package hada

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExtract_ContainerStrategy verifies the primary strategy finds a
// content-classed div, strips chrome and converts to markdown
func TestExtract_ContainerStrategy(t *testing.T) {
	html := `<html><body>
	  <nav>홈 | 검색 | 로그인</nav>
	  <div class="topic_contents">
	    <span class="votes">▲ 31 points</span>
	    <span class="meta">by someone 3시간전 | 댓글 12개</span>
	    <p>이 글은 본문 첫 단락입니다. 충분히 길어서 추출 결과로 인정됩니다.</p>
	    <p>두 번째 단락에는 <strong>강조</strong>도 들어 있습니다.</p>
	    <script>trackPageView()</script>
	  </div>
	</body></html>`
	d := NewDetailFetcher(newTestClient(t, "https://news.hada.io/"), 10000)

	text, strategy := d.extract(parseHTML(t, html), "https://news.hada.io/topic?id=1")

	assert.Equal(t, "container", strategy)
	assert.Contains(t, text, "본문 첫 단락입니다")
	assert.Contains(t, text, "**강조**", "markup converts to markdown")
	assert.NotContains(t, text, "points", "vote chrome is stripped")
	assert.NotContains(t, text, "댓글", "comment chrome is stripped")
	assert.NotContains(t, text, "trackPageView", "scripts are stripped")
}

// TestExtract_ArticleElementFallback verifies the article element serves when
// no content-classed div exists
func TestExtract_ArticleElementFallback(t *testing.T) {
	html := `<html><body>
	  <article>
	    <p>아티클 요소 안에 담긴 본문입니다. 내용 클래스가 전혀 없을 때에는 전략 체인의 다음 후보인 아티클 요소가 본문 컨테이너로 선택되어야 합니다.</p>
	  </article>
	</body></html>`
	d := NewDetailFetcher(newTestClient(t, "https://news.hada.io/"), 10000)

	text, strategy := d.extract(parseHTML(t, html), "https://news.hada.io/topic?id=2")

	assert.Equal(t, "container", strategy)
	assert.Contains(t, text, "아티클 요소 안에 담긴 본문입니다")
}

// TestExtract_SiblingScan verifies the feed-flow strategy: block elements
// after the first outbound link
func TestExtract_SiblingScan(t *testing.T) {
	html := `<html><body>
	  <td>
	    <h1><a href="https://external.example.org/story">외부 링크 제목</a></h1>
	    <p>외부 링크 다음에 오는 첫 단락입니다. 형제 스캔 전략이 모아야 합니다.</p>
	    <ul><li>목록 항목도 포함됩니다</li></ul>
	    <blockquote>인용문까지 이어집니다</blockquote>
	  </td>
	</body></html>`
	d := NewDetailFetcher(newTestClient(t, "https://news.hada.io/"), 10000)
	// Force past the container strategies by emptying the chain down to the
	// sibling scan
	d.strategies = d.strategies[2:]

	text, strategy := d.extract(parseHTML(t, html), "https://news.hada.io/topic?id=3")

	assert.Equal(t, "sibling-scan", strategy)
	assert.Contains(t, text, "첫 단락입니다")
	assert.Contains(t, text, "목록 항목도 포함됩니다")
	assert.Contains(t, text, "인용문까지 이어집니다")
}

// TestExtract_Truncation verifies the body is capped at the configured length
func TestExtract_Truncation(t *testing.T) {
	long := strings.Repeat("가나다라마바사 ", 100)
	html := fmt.Sprintf(`<html><body><div class="contents"><p>%s</p></div></body></html>`, long)
	d := NewDetailFetcher(newTestClient(t, "https://news.hada.io/"), 120)

	text, _ := d.extract(parseHTML(t, html), "https://news.hada.io/topic?id=4")

	assert.LessOrEqual(t, len([]rune(text)), 120)
}

// TestExtract_BlankLineCollapse verifies runs of blank lines collapse
func TestExtract_BlankLineCollapse(t *testing.T) {
	html := `<html><body><div class="contents">
	  <p>첫 단락입니다. 공백 줄 정리를 확인하기 위한 문장입니다.</p>
	  <br><br><br><br>
	  <p>둘째 단락입니다. 사이의 빈 줄은 하나로 줄어야 합니다.</p>
	</div></body></html>`
	d := NewDetailFetcher(newTestClient(t, "https://news.hada.io/"), 10000)

	text, _ := d.extract(parseHTML(t, html), "https://news.hada.io/topic?id=5")

	assert.NotContains(t, text, "\n\n\n")
}

// TestEnrich_FetchFailure verifies the record degrades to its description
func TestEnrich_FetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	d := NewDetailFetcher(newTestClient(t, server.URL+"/"), 10000)
	a := &Article{
		ID:          "6",
		Description: "리스팅에서 가져온 설명",
		SourceURL:   server.URL + "/topic?id=6",
	}

	d.Enrich(a)

	assert.Equal(t, "리스팅에서 가져온 설명", a.Content)
	assert.Equal(t, "리스팅에서 가져온 설명", a.Body())
}

// TestEnrich_Success verifies a served detail page fills Content
func TestEnrich_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><div class="topic_contents">
		  <p>서버가 내려준 본문입니다. 리스팅에서 가져온 짧은 설명을 대체할 만큼 충분히 길게 작성된 문장입니다.</p>
		</div></body></html>`))
	}))
	defer server.Close()

	d := NewDetailFetcher(newTestClient(t, server.URL+"/"), 10000)
	a := &Article{
		ID:          "7",
		Description: "짧은 설명",
		SourceURL:   server.URL + "/topic?id=7",
	}

	d.Enrich(a)

	assert.Contains(t, a.Content, "서버가 내려준 본문입니다")
	assert.NotEqual(t, "짧은 설명", a.Content)
}

// TestExtract_NothingUsable verifies an empty page yields no content
func TestExtract_NothingUsable(t *testing.T) {
	d := NewDetailFetcher(newTestClient(t, "https://news.hada.io/"), 10000)

	text, strategy := d.extract(parseHTML(t, "<html><body><p>짧음</p></body></html>"), "https://news.hada.io/topic?id=8")

	assert.Empty(t, text)
	assert.Empty(t, strategy)
}
