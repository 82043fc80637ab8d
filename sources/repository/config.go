package repository

import "time"

const repositoryTimeout = 20 * time.Second
