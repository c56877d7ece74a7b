FROM golang:1.24-alpine AS builder

ARG SERVICE=api

WORKDIR /app

# Dependencies
COPY go.mod go.sum ./
RUN go mod download

# Source
COPY . .

# Build the selected service and the admin CLI
RUN CGO_ENABLED=0 GOOS=linux go build -o /app/service ./cmd/${SERVICE}
RUN CGO_ENABLED=0 GOOS=linux go build -o /app/casectl ./cmd/casectl

# Runtime
FROM alpine:3.19

RUN apk add --no-cache ca-certificates tzdata

WORKDIR /app

COPY --from=builder /app/service .
COPY --from=builder /app/casectl .
COPY --from=builder /app/migrations ./migrations

RUN mkdir -p /app/uploads
ENV UPLOAD_DIR=/app/uploads MIGRATIONS_DIR=/app/migrations

EXPOSE 3000

CMD ["./service"]
