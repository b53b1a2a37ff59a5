package scrape

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/litescript/ls-rarbg-cli/internal/units"
)

// trackers is the fixed announce list appended to synthesized magnets,
// pre-escaped the way the site itself links them.
const trackers = "http%3A%2F%2Ftracker.trackerfix.com%3A80%2Fannounce" +
	"&tr=udp%3A%2F%2F9.rarbg.me%3A2710" +
	"&tr=udp%3A%2F%2F9.rarbg.to%3A2710"

// The listing rows embed a thumbnail whose path carries the info hash.
var thumbHashRe = regexp.MustCompile(`over/(.*?)\.jpg`)

const dateLayout = "2006-01-02 15:04:05"

// ExtractPage reads every result row out of one parsed listing page, in
// DOM order. Rows without a torrent-detail anchor carrying a title are
// skipped silently; per-field parse failures default the field rather
// than dropping the row.
func ExtractPage(doc *goquery.Document, domain string) []Record {
	var records []Record

	doc.Find("tr.lista2").Each(func(_ int, row *goquery.Selection) {
		anchor := row.Find(`a[href^="/torrent/"][title]`).First()
		if anchor.Length() == 0 {
			return
		}
		title, _ := anchor.Attr("title")
		if title == "" {
			return
		}
		href, _ := anchor.Attr("href")

		rec := Record{
			Title:      title,
			TorrentURL: torrentFileURL(domain, href, anchor.Text()),
			DetailURL:  "https://" + domain + href,
			Category:   DecodeIcon(row.Find("td:nth-child(1) img").First().AttrOr("src", "")),
			Uploader:   strings.TrimSpace(row.Find("td:nth-child(8)").First().Text()),
			Magnet:     magnetFromRow(row, title),
		}

		dateText := strings.TrimSpace(row.Find("td:nth-child(3)").First().Text())
		if ts, err := time.Parse(dateLayout, dateText); err == nil {
			rec.Date = ts.Unix()
		} else {
			log.Debug().Str("title", title).Str("date", dateText).Msg("scrape: unparseable date")
		}

		sizeText := strings.TrimSpace(row.Find("td:nth-child(4)").First().Text())
		if size, err := units.ParseSize(sizeText); err == nil {
			rec.SizeBytes = size
		} else {
			log.Debug().Str("title", title).Str("size", sizeText).Msg("scrape: unparseable size")
		}

		rec.Seeders = cellInt(row, "td:nth-child(5) font")
		rec.Leechers = cellInt(row, "td:nth-child(6)")

		records = append(records, rec)
	})

	return records
}

func cellInt(row *goquery.Selection, selector string) int {
	n, err := strconv.Atoi(strings.TrimSpace(row.Find(selector).First().Text()))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// magnetFromRow synthesizes a magnet URI from the info hash leaked by
// the row's thumbnail path. Rows without the pattern yield an empty
// magnet; those are resolved lazily from the detail page later.
func magnetFromRow(row *goquery.Selection, title string) string {
	html, err := goquery.OuterHtml(row)
	if err != nil {
		return ""
	}
	match := thumbHashRe.FindStringSubmatch(html)
	if match == nil {
		return ""
	}
	return fmt.Sprintf("magnet:?xt=urn:btih:%s&dn=%s&tr=%s", match[1], url.QueryEscape(title), trackers)
}

// torrentFileURL rewrites a detail href ("/torrent/<id>") into the
// site's download endpoint, carrying the display filename and the
// referring detail page as query parameters.
func torrentFileURL(domain, href, display string) string {
	return "https://" + domain +
		strings.Replace(href, "torrent/", "download.php?id=", 1) +
		"&f=" + url.QueryEscape(strings.TrimSpace(display)+"-[rarbg.to].torrent") +
		"&tpageurl=" + url.QueryEscape(strings.TrimSpace(href))
}
