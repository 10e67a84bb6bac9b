package testutil

import (
	"encoding/json"
	"testing"

	"github.com/lepinkainen/shamash/internal/catalog"
)

// FixtureCatalog returns a fixed 10-entry book catalog. Three entries
// mention Talmud in a title or author field.
func FixtureCatalog() []catalog.Entry {
	return []catalog.Entry{
		{DisplayName: "תלמוד בבלי ברכות", DisplayNameEnglish: "Talmud Bavli Berakhot", Author: "", AuthorEnglish: "", Category: "תלמוד", CategoryEnglish: "Talmud", PrintYear: 1520, PrintLocation: "ונציה", PrintLocationEnglish: "Venice"},
		{DisplayName: "תניא", DisplayNameEnglish: "Tanya", Author: "שניאור זלמן מלאדי", AuthorEnglish: "Shneur Zalman of Liadi", Category: "ספרי חסידות", CategoryEnglish: "Sifrei Chasidut", PrintYear: 1796, PrintLocation: "סלאוויטא", PrintLocationEnglish: "Slavuta"},
		{DisplayName: "שו\"ת חתם סופר", DisplayNameEnglish: "Responsa Chatam Sofer", Author: "משה סופר", AuthorEnglish: "Moshe Sofer", Category: "שו\"ת", CategoryEnglish: "Responsa", PrintYear: 1855, PrintLocation: "פרשבורג", PrintLocationEnglish: "Pressburg"},
		{DisplayName: "פני יהושע", DisplayNameEnglish: "Pnei Yehoshua on Talmud", Author: "יעקב יהושע פלק", AuthorEnglish: "Yaakov Yehoshua Falk", Category: "אחרונים על התלמוד", CategoryEnglish: "Acharonim on Talmud Bavli", PrintYear: 1739, PrintLocation: "אמשטרדם", PrintLocationEnglish: "Amsterdam"},
		{DisplayName: "משנה ברורה", DisplayNameEnglish: "Mishnah Berurah", Author: "ישראל מאיר הכהן", AuthorEnglish: "Yisrael Meir Kagan", Category: "הלכה", CategoryEnglish: "Halakhah", PrintYear: 1884, PrintLocation: "ורשה", PrintLocationEnglish: "Warsaw"},
		{DisplayName: "ליקוטי מוהר\"ן", DisplayNameEnglish: "Likutei Moharan", Author: "נחמן מברסלב", AuthorEnglish: "Nachman of Breslov", Category: "ספרי חסידות", CategoryEnglish: "Sifrei Chasidut", PrintYear: 1808, PrintLocation: "אוסטרהא", PrintLocationEnglish: "Ostroh"},
		{DisplayName: "מפרשי התלמוד", DisplayNameEnglish: "Commentators", Author: "חכמי התלמוד", AuthorEnglish: "Sages of the TALMUD", Category: "מפרשים", CategoryEnglish: "Bible Commentary", PrintYear: 0},
		{DisplayName: "אור החיים", DisplayNameEnglish: "Ohr HaChaim", Author: "חיים בן עטר", AuthorEnglish: "Chaim ibn Attar", Category: "מפרשים", CategoryEnglish: "Bible Commentary", PrintYear: 1742, PrintLocation: "ונציה", PrintLocationEnglish: "Venice"},
		{DisplayName: "קדושת לוי", DisplayNameEnglish: "Kedushat Levi", Author: "לוי יצחק מברדיטשוב", AuthorEnglish: "Levi Yitzchak of Berditchev", Category: "ספרי חסידות", CategoryEnglish: "Sifrei Chasidut", PrintYear: 1798, PrintLocation: "סלאוויטא", PrintLocationEnglish: "Slavuta"},
		{DisplayName: "ערוך השולחן", DisplayNameEnglish: "Arukh HaShulchan", Author: "יחיאל מיכל עפשטיין", AuthorEnglish: "Yechiel Michel Epstein", Category: "הלכה", CategoryEnglish: "Halakhah", PrintYear: 1903, PrintLocation: "ורשה", PrintLocationEnglish: "Warsaw"},
	}
}

// FixtureCatalogJSON returns FixtureCatalog encoded the way the upstream
// books.json file is.
func FixtureCatalogJSON(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(FixtureCatalog())
	if err != nil {
		t.Fatalf("failed to marshal fixture catalog: %v", err)
	}
	return data
}
