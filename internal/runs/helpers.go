package runs

import (
	"database/sql"
	"errors"
	"time"
)

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id              int64
		sourcePath      sql.NullString
		imageName       sql.NullString
		statusStr       string
		sourceWidth     sql.NullInt64
		sourceHeight    sql.NullInt64
		targetWidth     sql.NullInt64
		targetHeight    sql.NullInt64
		targetDPI       sql.NullInt64
		perCallScale    sql.NullInt64
		stepCount       sql.NullInt64
		passIndex       sql.NullInt64
		workingFile     sql.NullString
		finalFile       sql.NullString
		errorMessage    sql.NullString
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&imageName,
		&statusStr,
		&sourceWidth,
		&sourceHeight,
		&targetWidth,
		&targetHeight,
		&targetDPI,
		&perCallScale,
		&stepCount,
		&passIndex,
		&workingFile,
		&finalFile,
		&errorMessage,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		SourcePath:      sourcePath.String,
		ImageName:       imageName.String,
		Status:          Status(statusStr),
		SourceWidth:     int(sourceWidth.Int64),
		SourceHeight:    int(sourceHeight.Int64),
		TargetWidth:     int(targetWidth.Int64),
		TargetHeight:    int(targetHeight.Int64),
		TargetDPI:       int(targetDPI.Int64),
		PerCallScale:    int(perCallScale.Int64),
		StepCount:       int(stepCount.Int64),
		PassIndex:       int(passIndex.Int64),
		WorkingFile:     workingFile.String,
		FinalFile:       finalFile.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
