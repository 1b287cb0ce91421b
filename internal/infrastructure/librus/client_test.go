package librus

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlakM/czujka-librus/internal/config"
	"github.com/FlakM/czujka-librus/internal/domain"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.LibrusConfig{
		BaseURL:  server.URL,
		Username: "parent",
		Password: "secret",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func serveHTML(t *testing.T, path, html string) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, html)
	})
	return mux
}

func TestAuthenticateSuccess(t *testing.T) {
	t.Parallel()

	var gotLogin, gotPasswd string
	mux := http.NewServeMux()
	mux.HandleFunc("/loguj", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotLogin = r.PostFormValue("login")
		gotPasswd = r.PostFormValue("passwd")
		io.WriteString(w, `<html><body><div id="user-section">Jan</div></body></html>`)
	})

	client := testClient(t, mux)
	require.NoError(t, client.Authenticate(context.Background()))
	assert.Equal(t, "parent", gotLogin)
	assert.Equal(t, "secret", gotPasswd)
}

func TestAuthenticateRejected(t *testing.T) {
	t.Parallel()

	client := testClient(t, serveHTML(t, "/loguj",
		`<html><body><p class="error">Nieprawidłowy login lub hasło</p></body></html>`))

	err := client.Authenticate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}

func TestAnnouncementsParsing(t *testing.T) {
	t.Parallel()

	client := testClient(t, serveHTML(t, "/ogloszenia", `<html><body>
		<table class="decorated big">
			<thead><tr><td>Wycieczka klasowa</td></tr></thead>
			<tbody>
				<tr><th>Dodał</th><td>Anna Kowalska</td></tr>
				<tr><th>Data publikacji</th><td>2024-01-05</td></tr>
				<tr><th>Treść</th><td>Zbiórka o 8:00 przed szkołą.</td></tr>
			</tbody>
		</table>
		<table class="decorated big">
			<thead><tr><td>Zebranie</td></tr></thead>
			<tbody>
				<tr><th>Data publikacji</th><td>2024-01-06</td></tr>
			</tbody>
		</table>
	</body></html>`))

	out, err := client.Announcements(context.Background())
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, domain.Announcement{
		Title:   "Wycieczka klasowa",
		Author:  "Anna Kowalska",
		Date:    "2024-01-05",
		Content: "Zbiórka o 8:00 przed szkołą.",
	}, out[0])
	assert.Equal(t, "Zebranie", out[1].Title)
	assert.Empty(t, out[1].Content, "missing rows stay empty rather than failing")
}

func TestInboxParsing(t *testing.T) {
	t.Parallel()

	client := testClient(t, serveHTML(t, "/wiadomosci/6", `<html><body>
		<table class="decorated">
			<tbody>
				<tr>
					<td><input type="checkbox"></td>
					<td>Nowak Teresa</td>
					<td><a href="/wiadomosci/1/6/12345/f0">Zebranie rodziców</a></td>
					<td>2024-01-08 14:30</td>
				</tr>
				<tr><td colspan="4">Brak wiadomości</td></tr>
			</tbody>
		</table>
	</body></html>`))

	out, err := client.Inbox(context.Background(), 6)
	require.NoError(t, err)

	require.Len(t, out, 1, "rows without a message link are skipped")
	assert.Equal(t, domain.MessageHeader{
		ID:     12345,
		Sender: "Nowak Teresa",
		Title:  "Zebranie rodziców",
		Date:   "2024-01-08 14:30",
	}, out[0])
}

func TestMessageDetailParsing(t *testing.T) {
	t.Parallel()

	client := testClient(t, serveHTML(t, "/wiadomosci/1/6/12345/f0", `<html><body>
		<table class="message-header">
			<tr><th>Nadawca</th><td>Teresa Nowak (wychowawca)</td></tr>
			<tr><th>Temat</th><td>Zebranie rodziców</td></tr>
		</table>
		<div class="container-message-content">Zapraszam na zebranie w czwartek.</div>
	</body></html>`))

	detail, err := client.Message(context.Background(), 6, 12345)
	require.NoError(t, err)

	assert.Equal(t, "Zapraszam na zebranie w czwartek.", detail.Body)
	assert.Equal(t, "Teresa Nowak (wychowawca)", detail.Sender)
}

func TestGradesParsing(t *testing.T) {
	t.Parallel()

	client := testClient(t, serveHTML(t, "/przegladaj_oceny/uczen", `<html><body>
		<table class="decorated stretch">
			<tbody>
				<tr class="line0" data-subject-id="42">
					<td class="subject">Matematyka</td>
					<td class="semester">
						<a class="ocena" href="/przegladaj_oceny/szczegoly/777" title="Sprawdzian: ułamki">5</a>
						<a class="ocena" href="/przegladaj_oceny/szczegoly/778" title="">4+</a>
					</td>
					<td class="semester"></td>
				</tr>
				<tr class="line1">
					<td class="subject">Zachowanie</td>
					<td class="semester"></td>
					<td class="semester"></td>
				</tr>
			</tbody>
		</table>
	</body></html>`))

	out, err := client.Grades(context.Background())
	require.NoError(t, err)

	require.Len(t, out, 2)
	math := out[0]
	assert.Equal(t, 42, math.ID)
	assert.Equal(t, "Matematyka", math.Name)
	require.Len(t, math.Semesters, 1, "empty semester cells yield no semester")
	require.Len(t, math.Semesters[0].Grades, 2)
	assert.Equal(t, domain.GradeEntry{ID: 777, Value: "5", Info: "Sprawdzian: ułamki"}, math.Semesters[0].Grades[0])

	assert.Equal(t, 0, out[1].ID, "row without data-subject-id keeps the placeholder id")
	assert.Empty(t, out[1].Semesters)
}

func TestCalendarParsing(t *testing.T) {
	t.Parallel()

	client := testClient(t, serveHTML(t, "/terminarz", `<html><body>
		<div class="kalendarz-dzien">
			<div class="kalendarz-numer-dnia">10</div>
			<div class="kalendarz-event" onclick="location.href='/terminarz/szczegoly/900'">Przedstawienie</div>
			<div class="kalendarz-event">Dzień wolny</div>
		</div>
		<div class="kalendarz-dzien">
			<div class="kalendarz-numer-dnia">11</div>
		</div>
	</body></html>`))

	out, err := client.Calendar(context.Background(), time.January, 2024)
	require.NoError(t, err)

	require.Len(t, out, 1, "days without events are dropped")
	day := out[0]
	assert.Equal(t, "2024-01-10", day.Day)
	require.Len(t, day.Events, 2)
	assert.Equal(t, domain.EventHeader{ID: 900, Title: "Przedstawienie", Day: "2024-01-10"}, day.Events[0])
	assert.Equal(t, -1, day.Events[1].ID, "event without a detail link carries the sentinel id")
}

func TestEventDetailParsing(t *testing.T) {
	t.Parallel()

	client := testClient(t, serveHTML(t, "/terminarz/szczegoly/900", `<html><body>
		<table class="decorated">
			<tr><th>Data</th><td>2024-01-10</td></tr>
			<tr><th>Opis</th><td>Przedstawienie klasowe, stroje mile widziane.</td></tr>
		</table>
	</body></html>`))

	detail, err := client.Event(context.Background(), 900)
	require.NoError(t, err)
	assert.Equal(t, "Przedstawienie klasowe, stroje mile widziane.", detail.Description)
}

func TestHomeworkSubjectsParsing(t *testing.T) {
	t.Parallel()

	client := testClient(t, serveHTML(t, "/moje_zadania", `<html><body>
		<select name="przedmiot">
			<option value="0">Wszystkie</option>
			<option value="11">Matematyka</option>
			<option value="12">Przyroda</option>
		</select>
	</body></html>`))

	out, err := client.HomeworkSubjects(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.Subject{
		{ID: 0, Name: "Wszystkie"},
		{ID: 11, Name: "Matematyka"},
		{ID: 12, Name: "Przyroda"},
	}, out)
}

func TestHomeworkListingParsing(t *testing.T) {
	t.Parallel()

	var gotForm map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/moje_zadania", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"przedmiot": r.PostFormValue("przedmiot"),
			"dataOd":    r.PostFormValue("dataOd"),
			"dataDo":    r.PostFormValue("dataDo"),
		}
		io.WriteString(w, `<html><body>
			<table class="decorated">
				<tbody>
					<tr>
						<td>Matematyka</td>
						<td>J. Liczby</td>
						<td><a href="/moje_zadania/podglad/500">Zadania 3-5</a></td>
						<td>praca domowa</td>
						<td>2024-01-10</td>
						<td>2024-01-17</td>
					</tr>
				</tbody>
			</table>
		</body></html>`)
	})

	client := testClient(t, mux)
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	out, err := client.Homework(context.Background(), 11, from, to)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"przedmiot": "11",
		"dataOd":    "2024-01-01",
		"dataDo":    "2024-02-29",
	}, gotForm)
	require.Len(t, out, 1)
	assert.Equal(t, domain.HomeworkHeader{
		ID:       500,
		Subject:  "Matematyka",
		Teacher:  "J. Liczby",
		Title:    "Zadania 3-5",
		Kind:     "praca domowa",
		DateFrom: "2024-01-10",
		DateTo:   "2024-01-17",
	}, out[0])
}

func TestHomeworkDetailParsing(t *testing.T) {
	t.Parallel()

	client := testClient(t, serveHTML(t, "/moje_zadania/podglad/500", `<html><body>
		<table class="decorated">
			<tr><th>Nauczyciel</th><td>Jan Liczby</td></tr>
			<tr><th>Treść</th><td>Strony 3-5 z zeszytu ćwiczeń.</td></tr>
		</table>
	</body></html>`))

	detail, err := client.HomeworkDetail(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, "Strony 3-5 z zeszytu ćwiczeń.", detail.Content)
	assert.Equal(t, "Jan Liczby", detail.Teacher)
}

func TestFetchDocumentNonOKStatus(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ogloszenia", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})

	client := testClient(t, mux)
	_, err := client.Announcements(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
