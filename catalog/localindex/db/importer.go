package db

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/greenwatch/ndvi-broker/util"
)

//BeginIngestJobMessage is sent on a channel to start an ingest job.
const BeginIngestJobMessage = "start"

//AbortIngestJobMessage is sent on a channel to stop an in-progress job.
const AbortIngestJobMessage = "stop"

//ConnectionProvider is a function that can provide a database connection.
type ConnectionProvider func(util.LogContext) (*sql.DB, error)

//Importer manages the state for an ingest job.
type Importer struct {
	scenesURL      string
	scenesIsGzip   bool
	dbConnProvider ConnectionProvider
	statusChan     chan chan string
}

//NewImporter intializes a new importer.
func NewImporter(
	url string,
	useGzip bool,
	dbConnProvider ConnectionProvider) *Importer {
	return &Importer{
		scenesURL:      url,
		scenesIsGzip:   useGzip,
		dbConnProvider: dbConnProvider,
		statusChan:     make(chan chan string, 10)}
}

//ImportWhile peforms the Import() task and waits for a channel.
//Note: this is blocking
//The function will exit when messageChan is closed and any in-progress jobs complete.
//To close quickly, send AbortIngestJobMessage on messageChan before closing it.
func (imp *Importer) ImportWhile(messageChan <-chan string, maxTimeBetweenJobs time.Duration) {
	log.Println("Ingest loop started with frequency", maxTimeBetweenJobs)

	previousStatus := "\tNone"

	scheduleTimer := time.NewTimer(maxTimeBetweenJobs)
	nextScheduledStartTime := time.Now().Add(maxTimeBetweenJobs)

	var startJob bool
	for {
		startJob = false

		//Status is reported cooperatively, so deal with any requests
		//while waiting for a start message.
		select {
		case <-scheduleTimer.C:
			log.Println("Maximum time between ingest jobs elapsed.")
			startJob = true
		case msg, ok := <-messageChan:
			if !ok {
				return //The message channel has been closed. Exit.
			}
			switch msg {
			case BeginIngestJobMessage:
				log.Println("User requested ingest job start.")
				startJob = true
			default:
				//ignore; only start messages matter here.
			}
		case respChan := <-imp.statusChan:
			select {
			case respChan <- fmt.Sprintf("%v\nStatus: Sleeping until %v\nPrevious job:\n%v",
				time.Now().Format("Mon Jan _2 15:04:05 2006"),
				nextScheduledStartTime.Format("Mon Jan _2 15:04:05 2006"),
				previousStatus): //good
			default:
				//Could not send immediately. Drop the request.
			}
		}

		if startJob {
			log.Println("Starting ingest job.")
			previousStatus = imp.Import(messageChan)

			scheduleTimer.Stop()
		TimerDrainLoop:
			for {
				select {
				case <-scheduleTimer.C: //discard
				default:
					break TimerDrainLoop
				}
			}

			scheduleTimer.Reset(maxTimeBetweenJobs)
			nextScheduledStartTime = time.Now().Add(maxTimeBetweenJobs)
		}
	}
}

//GetStatus is a thread safe way to get information about the import operation.
func (imp *Importer) GetStatus() string {
	responseChan := make(chan string, 1) //Must have a buffer; ingest won't wait if it can't send.
	imp.statusChan <- responseChan
	status := <-responseChan
	return status
}

//Import opens the scene list source and runs the ingest against a
//fresh database connection.
func (imp *Importer) Import(messageChan <-chan string) (result string) {
	var mainReader io.Reader
	sourceReader, err := openReader(imp.scenesURL)
	if err != nil {
		log.Fatal("Could not open the scene list file/url.")
	}
	defer sourceReader.Close()
	mainReader = sourceReader

	if imp.scenesIsGzip {
		archiveReader, zipErr := gzip.NewReader(mainReader)
		if zipErr != nil {
			log.Fatal("Error opening gzip archive.", zipErr)
		}
		defer archiveReader.Close()
		mainReader = archiveReader
	}

	//Database connection is opened right before the ingest, and closed
	//immediately after.
	database, err := imp.dbConnProvider(&util.BasicLogContext{})
	if err != nil {
		log.Fatal("Could not open database connection.")
	}
	defer database.Close()

	return imp.Ingest(mainReader, database, messageChan)
}

func openReader(scenesURL string) (io.ReadCloser, error) {
	if strings.HasPrefix(scenesURL, "http://") || strings.HasPrefix(scenesURL, "https://") {
		log.Println("Requesting url:", scenesURL)
		listResponse, netErr := http.Get(scenesURL)
		if netErr != nil {
			return nil, netErr
		}
		defer listResponse.Body.Close()

		//Download the whole body so the connection does not stay open
		//for the duration of the ingest.
		bodyData, _ := ioutil.ReadAll(listResponse.Body)

		return ioutil.NopCloser(bytes.NewBuffer(bodyData)), nil
	}

	cleanPath := filepath.Clean(scenesURL)
	log.Println("Opening file", cleanPath)
	file, err := os.Open(cleanPath)
	return file, err
}

type jobStats struct {
	NumberAddedOrUpdated int
	NumberError          int
	StartTime            time.Time
	EndTime              time.Time
	CanceledByUser       bool
}

func (stats *jobStats) String() string {
	return fmt.Sprintf(`
		Start:	%v
		End:	%v
		Canceled: %v
		#Added:		%v
		#Error:		%v
		`,
		stats.StartTime.Format("Mon Jan _2 15:04:05 2006"),
		stats.EndTime.Format("Mon Jan _2 15:04:05 2006"),
		stats.CanceledByUser,
		stats.NumberAddedOrUpdated,
		stats.NumberError)
}

//sceneCSVColumns is the required header of a scene list file.
var sceneCSVColumns = []string{
	"product_id", "acquired", "cloud_cover", "processing_baseline",
	"scene_url", "min_lon", "min_lat", "max_lon", "max_lat",
}

//Ingest reads from the stream as a CSV and inserts/updates index rows for scenes.
func (imp *Importer) Ingest(reader io.Reader, database *sql.DB, cancelChan <-chan string) (result string) {
	csvReader := csv.NewReader(reader)
	headerRow, err := csvReader.Read()
	if err != nil {
		log.Fatal("Error reading the scene list header line.")
	}

	columnIndexes, err := mapColumns(sceneCSVColumns, headerRow)
	if err != nil {
		log.Fatal("Error extracting column names: ", err)
	}

	return imp.ingest(csvReader, columnIndexes, database, cancelChan)
}

func (imp *Importer) ingest(
	sceneCsv *csv.Reader,
	columnIndexes map[string]int,
	database *sql.DB,
	cancelChan <-chan string) (result string) {

	var stats jobStats
	stats.StartTime = time.Now()
	lastProgressLogTime := time.Now()
	progressLogInterval := time.Duration(time.Second * 30)

	sceneCsv.ReuseRecord = true

	tx, err := database.Begin()
	if err != nil {
		log.Fatal("Could not begin ingest transaction.", err)
	}

CSVLoop:
	for {
		//Check whether the user has requested cancelation.
		if abort := drainMessages(cancelChan); abort {
			log.Println("Ingest job canceled by user.")
			stats.CanceledByUser = true
			break CSVLoop
		}

		//Report the status to anyone waiting for it.
		drainStatusChannel(imp.statusChan, &stats)

		//Occasionally emit progress to the log stream
		if time.Since(lastProgressLogTime) > progressLogInterval {
			log.Printf("Ingest Progress: Added:%v Error:%v", stats.NumberAddedOrUpdated, stats.NumberError)
			lastProgressLogTime = time.Now()
		}

		rawLineValues, csvErr := sceneCsv.Read()
		switch csvErr {
		case nil:
			scene, parseErr := sceneFromCSVRecord(columnIndexes, rawLineValues)
			if parseErr != nil {
				stats.NumberError++
				log.Println("Error parsing scene record:", parseErr, rawLineValues)
				continue
			}
			if insertErr := UpsertScene(tx, scene); insertErr != nil {
				stats.NumberError++
				log.Println("Error inserting scene into db.", insertErr, rawLineValues)
			} else {
				stats.NumberAddedOrUpdated++
			}
		case io.EOF:
			break CSVLoop
		default:
			//Something went wrong reading the line. Possibly formatting.
			//Log it and move along.
			log.Println("Error reading csv line:", csvErr, rawLineValues)
			stats.NumberError++
		}
	}

	if stats.CanceledByUser {
		tx.Rollback()
	} else if err = tx.Commit(); err != nil {
		log.Println("Error committing ingest transaction.", err)
	}

	drainStatusChannel(imp.statusChan, &stats)

	stats.EndTime = time.Now()
	log.Printf("Ingest Complete: %v", stats.String())
	log.Printf("Ingest took %s", stats.EndTime.Sub(stats.StartTime))

	return fmt.Sprintf("%v", stats.String())
}

//mapColumns locates each required column in the header row.
func mapColumns(required []string, headerRow []string) (map[string]int, error) {
	indexes := map[string]int{}
	for i, name := range headerRow {
		indexes[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := indexes[name]; !ok {
			return nil, fmt.Errorf("scene list is missing the %q column", name)
		}
	}
	return indexes, nil
}

func sceneFromCSVRecord(columnIndexes map[string]int, record []string) (IndexedScene, error) {
	scene := IndexedScene{}

	value := func(column string) string {
		index := columnIndexes[column]
		if index >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[index])
	}

	scene.ProductID = value("product_id")
	if scene.ProductID == "" {
		return scene, fmt.Errorf("record has no product_id")
	}
	scene.Baseline = value("processing_baseline")
	scene.SceneURLString = value("scene_url")
	if scene.SceneURLString == "" {
		return scene, fmt.Errorf("record has no scene_url")
	}

	var err error
	if scene.AcquiredDate, err = time.Parse(time.RFC3339, value("acquired")); err != nil {
		return scene, fmt.Errorf("bad acquired date: %v", err)
	}
	if scene.CloudCover, err = strconv.ParseFloat(value("cloud_cover"), 64); err != nil {
		return scene, fmt.Errorf("bad cloud cover: %v", err)
	}
	if scene.MinLon, err = strconv.ParseFloat(value("min_lon"), 64); err != nil {
		return scene, fmt.Errorf("bad min_lon: %v", err)
	}
	if scene.MinLat, err = strconv.ParseFloat(value("min_lat"), 64); err != nil {
		return scene, fmt.Errorf("bad min_lat: %v", err)
	}
	if scene.MaxLon, err = strconv.ParseFloat(value("max_lon"), 64); err != nil {
		return scene, fmt.Errorf("bad max_lon: %v", err)
	}
	if scene.MaxLat, err = strconv.ParseFloat(value("max_lat"), 64); err != nil {
		return scene, fmt.Errorf("bad max_lat: %v", err)
	}

	return scene, nil
}

//drainMessages reads all the messages from the channel looking for
//any abort messages.
//All other messages are ignored and discarded.
func drainMessages(messageChan <-chan string) (abortRequested bool) {
	abortRequested = false
	for {
		select {
		case msg := <-messageChan:
			abortRequested = abortRequested || (msg == AbortIngestJobMessage)
		default:
			return
		}
	}
}

//drainStatusChannel drains the status request channel
//and sends back a status string for each request.
func drainStatusChannel(statusChan <-chan chan string, stats *jobStats) {
	for {
		select {
		case resp := <-statusChan:
			if resp != nil {
				select {
				case resp <- fmt.Sprintf("%v\nIn progress\n%v", time.Now().Format("Mon Jan _2 15:04:05 2006"), stats.String()): //good
				default: //can't send. ignore this request.
				}
			}
		default:
			return
		}
	}
}
