package meetings

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"github.com/milymoreno/timesheet/internal/logging"
	"github.com/milymoreno/timesheet/pkg/models"
)

const imapServer = "imap.gmail.com:993"

// SubjectForDate is the subject line the export pipeline uses when
// mailing the day's meetings.
func SubjectForDate(date time.Time) string {
	return fmt.Sprintf("Reuniones JSON realizadas el %s", date.Format("2006-01-02"))
}

// FetchFromGmail finds the newest inbox message carrying the date's
// meetings JSON and decodes it, accepting either a .json attachment or
// a plain-text body. Returns ErrFileNotFound when no such message
// exists.
func FetchFromGmail(account, password string, date time.Time) ([]models.Meeting, error) {
	subject := SubjectForDate(date)
	logging.Info("searching mailbox for meetings export", "subject", subject)

	c, err := imapclient.DialTLS(imapServer, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP server: %w", err)
	}
	defer c.Close()

	if err := c.Login(account, password).Wait(); err != nil {
		return nil, fmt.Errorf("IMAP login: %w", err)
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting inbox: %w", err)
	}

	criteria := &imap.SearchCriteria{
		Header: []imap.SearchCriteriaHeaderField{
			{Key: "Subject", Value: subject},
		},
	}
	search, err := c.Search(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching inbox: %w", err)
	}

	seqNums := search.AllSeqNums()
	if len(seqNums) == 0 {
		return nil, fmt.Errorf("%w: no mail with subject %q", ErrFileNotFound, subject)
	}

	// newest message wins when the export was re-sent
	newest := seqNums[len(seqNums)-1]
	seqSet := imap.SeqSetNum(newest)

	bodySection := &imap.FetchItemBodySection{}
	fetchOptions := &imap.FetchOptions{
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}
	messages, err := c.Fetch(seqSet, fetchOptions).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetching message: %w", err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: message vanished during fetch", ErrFileNotFound)
	}

	return extractMeetings(messages[0].FindBodySection(bodySection))
}

// extractMeetings walks the MIME parts of a raw message looking for the
// meetings document.
func extractMeetings(raw []byte) ([]models.Meeting, error) {
	mr, err := mail.CreateReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("parsing mail message: %w", err)
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading mail part: %w", err)
		}

		switch header := part.Header.(type) {
		case *mail.AttachmentHeader:
			filename, _ := header.Filename()
			if !strings.HasSuffix(filename, ".json") {
				continue
			}
			data, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("reading attachment %q: %w", filename, err)
			}
			logging.Info("meetings attachment found", "filename", filename)
			return ParseJSON(data)

		case *mail.InlineHeader:
			contentType, _, _ := header.ContentType()
			if contentType != "text/plain" {
				continue
			}
			data, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			meetings, err := ParseJSON([]byte(strings.TrimSpace(string(data))))
			if err != nil {
				logging.Warn("message body is not a meetings document", "error", err)
				continue
			}
			return meetings, nil
		}
	}

	return nil, fmt.Errorf("%w: mail carries no meetings JSON", ErrFileNotFound)
}
